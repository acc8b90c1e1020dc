// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/movienight"
)

func (h *Handler) startPeriod(ctx context.Context, c call) error {
	period, err := h.periods.StartPeriod(ctx)
	if errors.Is(err, movienight.ErrConflict) {
		h.say(ctx, c, fmt.Sprintf("A submission period has already started, run `%s roll` to finish the current submission period.", h.prefix))
		return nil
	}
	if err != nil {
		return err
	}

	c.log.Info("period started", "period_id", period.ID)
	h.say(ctx, c, "Started new submission period!")
	return nil
}

func (h *Handler) endPeriod(ctx context.Context, c call) error {
	period, err := h.periods.GetOpenPeriod(ctx)
	if isNotFound(err) {
		h.say(ctx, c, "No current movie submission period exists.")
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := h.periods.ClosePeriod(ctx, period); err != nil {
		if errors.Is(err, movienight.ErrInvalidState) {
			h.say(ctx, c, "The submission period was already closed.")
			return nil
		}
		return err
	}

	h.say(ctx, c, "Ended current movie submission without roll!")
	return nil
}

func (h *Handler) reopenPeriod(ctx context.Context, c call) error {
	period, err := h.periods.GetMostRecentClosedPeriod(ctx)
	if isNotFound(err) {
		h.say(ctx, c, "Could not find a recently closed submission period.")
		return nil
	}
	if err != nil {
		return err
	}

	_, err = h.periods.ReopenPeriod(ctx, period)
	switch {
	case err == nil:
		h.say(ctx, c, "Reopened last submission period!")
	case errors.Is(err, movienight.ErrConflict):
		h.say(ctx, c, "Another submission period is open, end it before reopening the last one.")
	case errors.Is(err, movienight.ErrInvalidState):
		h.say(ctx, c, "That submission period is already open.")
	default:
		return err
	}
	return nil
}

func (h *Handler) listPeriods(ctx context.Context, c call) error {
	periods, err := h.periods.ListPeriods(ctx, 5)
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		h.say(ctx, c, "There are no submission periods yet.")
		return nil
	}

	now := h.now()
	embed := messaging.Embed{Title: "Submission Periods"}
	for _, p := range periods {
		status := "open, started " + humanize.RelTime(p.StartTime, now, "ago", "from now")
		if p.EndTime != nil {
			status = fmt.Sprintf("%s to %s", p.StartTime.Format("Jan 2"), p.EndTime.Format("Jan 2 2006"))
		}
		embed.Fields = append(embed.Fields, messaging.Field{
			Name:  fmt.Sprintf("Period #%d", p.ID),
			Value: status + "\n" + h.rollSummary(ctx, p.ID),
		})
	}

	_, err = h.messenger.PostEmbed(ctx, c.msg.ChannelID, embed)
	return err
}

func (h *Handler) rollSummary(ctx context.Context, periodID int64) string {
	roll, err := h.rolls.GetForPeriod(ctx, periodID)
	if err != nil {
		return "No Roll!"
	}
	sub1, err1 := h.subs.Get(ctx, roll.Selection1)
	sub2, err2 := h.subs.Get(ctx, roll.Selection2)
	if err1 != nil || err2 != nil {
		return "Roll details unavailable"
	}
	return fmt.Sprintf("Choice 1: %s\nChoice 2: %s", sub1.Title, sub2.Title)
}
