// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/movie-night/confirm"
	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
)

// roll closes the open period, draws two submissions and opens the vote.
// Steps run strictly in order for one initiator; concurrent rolls are
// settled by the store's one-roll-per-period constraint.
func (h *Handler) roll(ctx context.Context, c call) error {
	period, err := h.periods.GetOpenPeriod(ctx)
	if isNotFound(err) {
		h.say(ctx, c, noOpenPeriod)
		return nil
	}
	if err != nil {
		return err
	}

	candidates, err := h.subs.ListForPeriod(ctx, period.ID)
	if err != nil {
		return err
	}
	if len(candidates) < 2 {
		h.say(ctx, c, "Not enough movies submitted to choose two!")
		return nil
	}

	result, err := h.ask(ctx, c, "Would you like to roll for movie night?", "Starting roll", "Cancelling roll")
	if err != nil {
		return err
	}
	if result != confirm.Yes {
		c.log.Info("roll not confirmed", "result", result.String())
		return nil
	}

	// Someone closing it first is fine, the roll is still for this period
	if _, err := h.periods.ClosePeriod(ctx, period); err != nil && !errors.Is(err, movienight.ErrInvalidState) {
		return err
	}

	if existing, err := h.rolls.GetForPeriod(ctx, period.ID); err == nil {
		result, err := h.ask(ctx, c,
			"There already exists a roll for this movie submission period, would you like to roll again?",
			"Rolling again!", "Cancelling roll.")
		if err != nil {
			return err
		}
		if result != confirm.Yes {
			return nil
		}
		if err := h.rolls.Delete(ctx, existing); err != nil && !isNotFound(err) {
			return err
		}
	} else if !isNotFound(err) {
		return err
	}

	// The period is closed now, so the list cannot change under us
	candidates, err = h.subs.ListForPeriod(ctx, period.ID)
	if err != nil {
		return err
	}
	sel1, sel2, err := h.rolls.Draw(candidates)
	if errors.Is(err, movienight.ErrInsufficientCandidates) {
		h.say(ctx, c, "Not enough movies submitted to choose two!")
		return nil
	}
	if err != nil {
		return err
	}

	roll, err := h.rolls.Create(ctx, period.ID, sel1, sel2)
	if errors.Is(err, movienight.ErrConflict) {
		h.say(ctx, c, "Someone else rolled at the same time, check their roll.")
		return nil
	}
	if err != nil {
		return err
	}
	c.log.Info("roll drawn", "period_id", period.ID, "roll_id", roll.ID)

	name1 := h.messenger.DisplayName(ctx, c.msg.ChannelID, sel1.SubmitterID)
	name2 := h.messenger.DisplayName(ctx, c.msg.ChannelID, sel2.SubmitterID)

	return h.startVote(ctx, c, roll, sel1, sel2, name1, name2)
}

// startVote has the initiator pick an emote per selection, then posts the
// vote message.
func (h *Handler) startVote(ctx context.Context, c call, roll models.Roll, sel1, sel2 models.Submission, name1, name2 string) error {
	now := h.now()
	window := strings.TrimSpace(humanize.RelTime(now, now.Add(h.emoteTimeout), "", ""))

	selection, err := h.messenger.PostEmbed(ctx, c.msg.ChannelID, messaging.Embed{
		Title: "Movie Emoji Selections!",
		Description: fmt.Sprintf("Please react with the two emotes you would like to use for voting. "+
			"Make sure to only use emotes from within this server. You have %s.", window),
		Fields: []messaging.Field{
			{Name: sel1.Title, Value: "submitted by " + name1},
			{Name: sel2.Title, Value: "submitted by " + name2},
		},
	})
	if err != nil {
		return err
	}

	picks, err := h.collectEmotes(ctx, selection, c.msg.AuthorID, 2)
	if err != nil {
		return err
	}

	h.deleteQuietly(ctx, c, selection)

	if len(picks) < 2 {
		h.say(ctx, c, "No reactions supplied, try rolling later.")
		return nil
	}

	emotes := []string{picks[0].Emote, picks[1].Emote}
	for _, emote := range emotes {
		usable, err := h.messenger.EmoteUsable(ctx, c.msg.ChannelID, emote)
		if err != nil {
			return err
		}
		if !usable {
			h.say(ctx, c, "Cannot use emoji outside of Guild/Server!")
			return nil
		}
	}

	content := fmt.Sprintf("**Movie Voting!**\n%s submitted by %s, vote with %s\n%s submitted by %s, vote with %s\nVoting stays open for %s.",
		describe(sel1), name1, messaging.FormatEmote(picks[0].Emote, picks[0].Animated),
		describe(sel2), name2, messaging.FormatEmote(picks[1].Emote, picks[1].Animated),
		strings.TrimSpace(humanize.RelTime(now, now.Add(h.votingWindow), "", "")))

	vote, err := h.messenger.PostMessageWithEmoteOptions(ctx, c.msg.ChannelID, content, emotes)
	if vote.MessageID != "" {
		// Votes are counted from the message, not awaited
		h.messenger.Release(vote)
	}
	if err != nil {
		return err
	}

	if _, err := h.rolls.AssignEmotesAndVoteMessage(ctx, roll, emotes[0], emotes[1], vote); err != nil {
		return fmt.Errorf("assign vote: %w", err)
	}
	c.log.Info("vote started", "roll_id", roll.ID, "vote_message", vote.MessageID)
	return nil
}

// collectEmotes gathers up to n distinct reactions from actorID before the
// emote timeout runs out.
func (h *Handler) collectEmotes(ctx context.Context, ref models.MessageRef, actorID string, n int) ([]messaging.Response, error) {
	deadline := time.Now().Add(h.emoteTimeout)
	var picks []messaging.Response

	for len(picks) < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		resp, err := h.messenger.AwaitResponse(ctx, ref, actorID, remaining)
		if errors.Is(err, messaging.ErrTimeout) {
			break
		}
		if err != nil {
			return nil, err
		}

		if resp.ActorID != actorID || resp.Emote == "" || slices.ContainsFunc(picks, func(p messaging.Response) bool {
			return p.Emote == resp.Emote
		}) {
			continue
		}
		picks = append(picks, resp)
	}
	return picks, nil
}

func (h *Handler) deleteQuietly(ctx context.Context, c call, ref models.MessageRef) {
	if err := h.messenger.DeleteMessage(ctx, ref); err != nil {
		c.log.Warn("failed to delete message", "message_id", ref.MessageID, "error", err)
	}
}
