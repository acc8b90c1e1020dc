// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"errors"

	"github.com/danielhkuo/movie-night/movienight"
)

// runTally announces the current vote right away, even if the scheduler
// already did.
func (h *Handler) runTally(ctx context.Context, c call) error {
	result, err := h.tally.Retally(ctx)
	switch {
	case err == nil:
		c.log.Info("manual tally announced", "period_id", result.PeriodID, "roll_id", result.RollID)
	case isNotFound(err):
		h.say(ctx, c, "Could not find a roll for the last closed submission period.")
	case errors.Is(err, movienight.ErrVoteNotStarted):
		h.say(ctx, c, "Voting has not started for the last roll.")
	default:
		return err
	}
	return nil
}
