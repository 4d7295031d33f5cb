package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/otalvarodev/liga-live/middleware"
	"github.com/otalvarodev/liga-live/models"
	"github.com/otalvarodev/liga-live/services"
)

type ScheduleHandler struct {
	schedule services.ScheduleService
	logger   *slog.Logger
}

func NewScheduleHandler(schedule services.ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, logger: logger}
}

func categoryIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "categoryID"))
}

func (h *ScheduleHandler) GenerateGroupMatches(w http.ResponseWriter, r *http.Request) {
	categoryID, err := categoryIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		GroupLabel      string           `json:"group_label"`
		Teams           []models.TeamRef `json:"teams"`
		Kickoff         time.Time        `json:"kickoff"`
		IntervalMinutes int              `json:"interval_minutes"`
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

	matches, err := h.schedule.GenerateGroupMatches(r.Context(), services.GenerateGroupInput{
		CategoryID: categoryID,
		GroupLabel: input.GroupLabel,
		Teams:      input.Teams,
		Kickoff:    input.Kickoff,
		Interval:   time.Duration(input.IntervalMinutes) * time.Minute,
		ActorID:    actorID,
	})
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches})
}

func (h *ScheduleHandler) GenerateBracketMatches(w http.ResponseWriter, r *http.Request) {
	categoryID, err := categoryIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	var input struct {
		MatchDay        time.Time `json:"match_day"`
		IntervalMinutes int       `json:"interval_minutes"`
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

	result, err := h.schedule.GenerateBracketMatches(r.Context(), services.GenerateBracketInput{
		CategoryID: categoryID,
		MatchDay:   input.MatchDay,
		Interval:   time.Duration(input.IntervalMinutes) * time.Minute,
		ActorID:    actorID,
	})
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ScheduleHandler) ListBrackets(w http.ResponseWriter, r *http.Request) {
	categoryID, err := categoryIDParam(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	entries, err := h.schedule.ListBrackets(r.Context(), categoryID)
	if err != nil {
		mapServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"brackets": entries})
}
