package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/otalvarodev/liga-live/middleware"
	"github.com/otalvarodev/liga-live/models"
	"github.com/otalvarodev/liga-live/services"
)

type MatchHandler struct {
	matches services.MatchService
	logger  *slog.Logger
}

func NewMatchHandler(matches services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

func matchIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "matchID"))
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CategoryID int       `json:"category_id"`
		Team1ID    int       `json:"team1_id"`
		Team2ID    int       `json:"team2_id"`
		MatchTime  time.Time `json:"match_time"`
		GroupLabel *string   `json:"group_label"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	match, err := h.matches.Create(r.Context(), services.CreateMatchInput{
		CategoryID: input.CategoryID,
		Team1ID:    input.Team1ID,
		Team2ID:    input.Team2ID,
		MatchTime:  input.MatchTime,
		GroupLabel: input.GroupLabel,
		ActorID:    actorID,
	})
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"match": match})
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		MatchTime  *time.Time `json:"match_time"`
		GroupLabel *string    `json:"group_label"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	match, err := h.matches.Update(r.Context(), id, services.UpdateMatchInput{
		MatchTime:  input.MatchTime,
		GroupLabel: input.GroupLabel,
		ActorID:    actorID,
	})
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match})
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err := h.matches.Delete(r.Context(), id, actorID); err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	detail, err := h.matches.Get(r.Context(), id)
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		Period int `json:"period"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Period <= 0 {
		input.Period = 1
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	match, err := h.matches.Start(r.Context(), id, input.Period, actorID)
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match})
}

// simpleTransition serves the body-less lifecycle commands that share the
// same request shape.
func (h *MatchHandler) simpleTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, actorID int) (*models.Match, error)) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	match, err := fn(r.Context(), id, actorID)
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match})
}

func (h *MatchHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.matches.Pause)
}

func (h *MatchHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.matches.Resume)
}

func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.matches.Cancel)
}

func (h *MatchHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := h.matches.Finish(r.Context(), id, actorID)
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MatchHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		TeamID   int              `json:"team_id"`
		PlayerID int              `json:"player_id"`
		Kind     models.EventKind `json:"kind"`
		Minute   int              `json:"minute"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	event, err := h.matches.AddEvent(r.Context(), services.AddEventInput{
		MatchID:  id,
		TeamID:   input.TeamID,
		PlayerID: input.PlayerID,
		Kind:     input.Kind,
		Minute:   input.Minute,
		ActorID:  actorID,
	})
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"event": event})
}

func (h *MatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	id, err := matchIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		Score1 int `json:"score1"`
		Score2 int `json:"score2"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	actorID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	match, err := h.matches.UpdateScore(r.Context(), id, input.Score1, input.Score2, actorID)
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match})
}
