// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/movie-night/middleware"
	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
)

type PeriodHandler struct {
	periods *movienight.PeriodManager
	subs    *movienight.SubmissionStore
	rolls   *movienight.RollEngine
}

func NewPeriodHandler(repo movienight.Repository) *PeriodHandler {
	return &PeriodHandler{
		periods: movienight.NewPeriodManager(repo),
		subs:    movienight.NewSubmissionStore(repo),
		rolls:   movienight.NewRollEngine(repo, nil),
	}
}

// ListPeriods handles GET /periods?limit=N
// Newest first, each with its roll when there is one
func (h *PeriodHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	periods, err := h.periods.ListPeriods(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list periods", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summaries := make([]models.PeriodSummary, 0, len(periods))
	for _, p := range periods {
		view, err := h.rollView(r, p.ID)
		if err != nil && !errors.Is(err, movienight.ErrNotFound) {
			slog.Error("failed to load roll", "period_id", p.ID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		summaries = append(summaries, models.PeriodSummary{
			Period:    p,
			Roll:      view,
			StartedAt: humanize.Time(p.StartTime),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// CurrentPeriod handles GET /periods/current
func (h *PeriodHandler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.periods.GetOpenPeriod(r.Context())
	if errors.Is(err, movienight.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No submission period is open")
		return
	}
	if err != nil {
		slog.Error("failed to get open period", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	subs, err := h.subs.ListForPeriod(r.Context(), period.ID)
	if err != nil {
		slog.Error("failed to list submissions", "period_id", period.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.CurrentPeriodResponse{
		Period:      period,
		Submissions: subs,
	})
}

// GetRoll handles GET /periods/{id}/roll
func (h *PeriodHandler) GetRoll(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid period id")
		return
	}

	if _, err := h.periods.GetPeriod(r.Context(), id); err != nil {
		if errors.Is(err, movienight.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Period not found")
			return
		}
		slog.Error("failed to get period", "period_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	view, err := h.rollView(r, id)
	if errors.Is(err, movienight.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Period has no roll")
		return
	}
	if err != nil {
		slog.Error("failed to load roll", "period_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

func (h *PeriodHandler) rollView(r *http.Request, periodID int64) (*models.RollView, error) {
	roll, err := h.rolls.GetForPeriod(r.Context(), periodID)
	if err != nil {
		return nil, err
	}
	sel1, err := h.subs.Get(r.Context(), roll.Selection1)
	if err != nil {
		return nil, err
	}
	sel2, err := h.subs.Get(r.Context(), roll.Selection2)
	if err != nil {
		return nil, err
	}
	return &models.RollView{Roll: roll, Selection1: sel1, Selection2: sel2}, nil
}
