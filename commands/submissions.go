// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/movie-night/confirm"
	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
	"github.com/danielhkuo/movie-night/omdb"
)

const (
	noOpenPeriod = "No current movie submission periods active."
	inRoll       = "%s is part of this period's roll. Roll again to change it."
)

// resolve normalizes an IMDb link in text. Lookup failures fall back to the
// raw text.
func (h *Handler) resolve(ctx context.Context, c call, text string) (title, link string) {
	if h.normalizer == nil {
		return text, ""
	}
	title, link, err := h.normalizer.Normalize(ctx, text)
	if err != nil {
		if !errors.Is(err, omdb.ErrNoLink) {
			c.log.Warn("metadata lookup failed, keeping raw text", "error", err)
		}
		return text, ""
	}
	return title, link
}

func (h *Handler) submit(ctx context.Context, c call) error {
	if c.args == "" {
		h.say(ctx, c, "No movie supplied.")
		return nil
	}

	period, err := h.periods.GetOpenPeriod(ctx)
	if isNotFound(err) {
		h.say(ctx, c, noOpenPeriod)
		return nil
	}
	if err != nil {
		return err
	}

	title, link := h.resolve(ctx, c, c.args)

	sub, err := h.subs.Create(ctx, period.ID, c.msg.AuthorID, title, link)
	if err == nil {
		c.log.Info("movie submitted", "period_id", period.ID, "submission_id", sub.ID)
		h.say(ctx, c, "You've submitted the movie: "+describe(sub))
		return nil
	}
	if !errors.Is(err, movienight.ErrConflict) {
		return err
	}

	existing, err := h.subs.FindByUserInPeriod(ctx, period.ID, c.msg.AuthorID)
	if err != nil {
		return fmt.Errorf("find existing submission: %w", err)
	}

	if roll, err := h.rolls.GetForPeriod(ctx, period.ID); err == nil {
		if roll.Selection1 == existing.ID || roll.Selection2 == existing.ID {
			h.say(ctx, c, fmt.Sprintf(inRoll, existing.Title))
			return nil
		}
	} else if !isNotFound(err) {
		return err
	}

	result, err := h.ask(ctx, c,
		fmt.Sprintf("You've already submitted the movie: %s, would you like to update your submission?", existing.Title),
		"Submission updated!", "Submission not updated.")
	if err != nil {
		return err
	}
	if result != confirm.Yes {
		c.log.Info("replacement declined", "result", result.String())
		return nil
	}

	if _, err := h.subs.Replace(ctx, existing, title, link); err != nil {
		if errors.Is(err, movienight.ErrInRoll) {
			h.say(ctx, c, fmt.Sprintf(inRoll, existing.Title))
			return nil
		}
		if isNotFound(err) {
			h.say(ctx, c, "Your earlier submission was removed in the meantime, please submit again.")
			return nil
		}
		return err
	}
	return nil
}

func describe(sub models.Submission) string {
	if sub.Link != "" {
		return fmt.Sprintf("%s (%s)", sub.Title, sub.Link)
	}
	return sub.Title
}

func (h *Handler) getSubs(ctx context.Context, c call) error {
	period, err := h.periods.GetOpenPeriod(ctx)
	if isNotFound(err) {
		h.say(ctx, c, noOpenPeriod)
		return nil
	}
	if err != nil {
		return err
	}

	subs, err := h.subs.ListForPeriod(ctx, period.ID)
	if err != nil {
		return err
	}

	embed := messaging.Embed{
		Title:       "Current Movie Submissions",
		Description: fmt.Sprintf("%d submitted, period opened %s", len(subs), humanize.RelTime(period.StartTime, h.now(), "ago", "from now")),
	}
	for _, sub := range subs {
		embed.Fields = append(embed.Fields, messaging.Field{
			Name:  h.messenger.DisplayName(ctx, c.msg.ChannelID, sub.SubmitterID),
			Value: describe(sub),
		})
	}

	_, err = h.messenger.PostEmbed(ctx, c.msg.ChannelID, embed)
	return err
}

func (h *Handler) deleteSub(ctx context.Context, c call) error {
	targets := c.msg.Mentions
	if len(targets) == 0 {
		targets = []string{c.msg.AuthorID}
	}

	for _, target := range targets {
		if target != c.msg.AuthorID && !h.mods.IsModerator(c.msg.AuthorID, c.msg.AuthorRoles) {
			h.say(ctx, c, "Only moderators can delete other people's submissions.")
			return nil
		}
	}

	period, err := h.periods.GetOpenPeriod(ctx)
	if isNotFound(err) {
		h.say(ctx, c, "No current movie submission period exists.")
		return nil
	}
	if err != nil {
		return err
	}

	for _, target := range targets {
		name := h.messenger.DisplayName(ctx, c.msg.ChannelID, target)

		sub, err := h.subs.FindByUserInPeriod(ctx, period.ID, target)
		if isNotFound(err) {
			h.say(ctx, c, fmt.Sprintf("Submission does not exist for %s.", name))
			continue
		}
		if err != nil {
			return err
		}

		err = h.subs.Delete(ctx, sub)
		if errors.Is(err, movienight.ErrInRoll) {
			h.say(ctx, c, fmt.Sprintf(inRoll, sub.Title))
			continue
		}
		if err != nil && !isNotFound(err) {
			return err
		}
		h.say(ctx, c, fmt.Sprintf("Deleted submission %s for %s.", sub.Title, name))
	}
	return nil
}

// fixDB runs metadata normalization over every stored submission. A failed
// lookup is reported and the pass moves on.
func (h *Handler) fixDB(ctx context.Context, c call) error {
	if h.normalizer == nil {
		h.say(ctx, c, "Metadata lookup is not configured.")
		return nil
	}

	subs, err := h.subs.ListAll(ctx)
	if err != nil {
		return err
	}

	var fixed int
	var failures []string
	for _, sub := range subs {
		title, link, err := h.normalizer.Normalize(ctx, sub.Title)
		if errors.Is(err, omdb.ErrNoLink) {
			continue
		}
		if err != nil {
			c.log.Warn("metadata lookup failed", "submission_id", sub.ID, "error", err)
			failures = append(failures, fmt.Sprintf("#%d %s: %v", sub.ID, sub.Title, err))
			continue
		}
		if _, err := h.subs.Normalize(ctx, sub, title, link); err != nil {
			c.log.Warn("failed to update submission", "submission_id", sub.ID, "error", err)
			failures = append(failures, fmt.Sprintf("#%d %s: %v", sub.ID, sub.Title, err))
			continue
		}
		fixed++
	}

	c.log.Info("fixdb complete", "checked", len(subs), "fixed", fixed, "failed", len(failures))

	report := fmt.Sprintf("Checked %d submission(s), fixed %d.", len(subs), fixed)
	if len(failures) > 0 {
		report += fmt.Sprintf(" %d failed:\n%s", len(failures), strings.Join(failures, "\n"))
	}
	h.say(ctx, c, report)
	return nil
}
