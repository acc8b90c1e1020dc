// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/movie-night/middleware"
	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
)

// Retallier forces a tally of the latest vote.
type Retallier interface {
	Retally(ctx context.Context) (models.VoteResult, error)
}

// NextTallier reports when the scheduler fires next.
type NextTallier interface {
	NextTally() time.Time
}

type TallyHandler struct {
	tally     Retallier
	scheduler NextTallier
	now       func() time.Time
}

func NewTallyHandler(tally Retallier, scheduler NextTallier) *TallyHandler {
	return &TallyHandler{tally: tally, scheduler: scheduler, now: time.Now}
}

// Tally handles POST /tally (admin only)
// Announces the current counts of the last vote right away
func (h *TallyHandler) Tally(w http.ResponseWriter, r *http.Request) {
	result, err := h.tally.Retally(r.Context())
	switch {
	case err == nil:
		middleware.JSONResponse(w, http.StatusOK, result)
	case errors.Is(err, movienight.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "No roll to tally")
	case errors.Is(err, movienight.ErrVoteNotStarted):
		middleware.ErrorResponse(w, http.StatusConflict, "Voting has not started")
	default:
		slog.Error("manual tally failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Tally failed")
	}
}

// Schedule handles GET /schedule
func (h *TallyHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	next := h.scheduler.NextTally()

	middleware.JSONResponse(w, http.StatusOK, models.ScheduleResponse{
		NextTally: next,
		Wait:      next.Sub(now).Round(time.Second).String(),
		Relative:  humanize.RelTime(next, now, "ago", "from now"),
	})
}
