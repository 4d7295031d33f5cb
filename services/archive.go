package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/otalvarodev/liga-live/models"
	"github.com/otalvarodev/liga-live/repositories"
	"github.com/otalvarodev/liga-live/storage"
)

// LedgerArchiver writes a JSON snapshot of a finished match's event ledger to
// object storage. Archival runs after commit and off the request path; a
// failed upload is logged and never surfaced to the caller.
type LedgerArchiver struct {
	uploader storage.FileUploader
	events   repositories.MatchEventRepository
	logger   *slog.Logger
}

func NewLedgerArchiver(uploader storage.FileUploader, events repositories.MatchEventRepository, logger *slog.Logger) *LedgerArchiver {
	return &LedgerArchiver{uploader: uploader, events: events, logger: logger}
}

type ledgerSnapshot struct {
	Match      *models.Match              `json:"match"`
	Events     []*models.MatchEventDetail `json:"events"`
	ArchivedAt time.Time                  `json:"archived_at"`
}

func (a *LedgerArchiver) Archive(ctx context.Context, match *models.Match) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	events, err := a.events.ListByMatch(ctx, nil, match.ID)
	if err != nil {
		a.logger.Error("ledger archive: failed to load events",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}

	snapshot := ledgerSnapshot{Match: match, Events: events, ArchivedAt: time.Now().UTC()}
	body, err := json.Marshal(snapshot)
	if err != nil {
		a.logger.Error("ledger archive: failed to marshal snapshot",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("ledgers/category-%d/match-%d.json", match.CategoryID, match.ID)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		a.logger.Error("ledger archive: upload failed",
			slog.Int("match_id", match.ID), slog.Any("error", err))
		return
	}

	a.logger.Info("ledger archived",
		slog.Int("match_id", match.ID), slog.String("key", result.Key))
}
