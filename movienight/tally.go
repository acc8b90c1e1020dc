// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package movienight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/models"
)

// TallyService counts the vote on the most recently closed period's roll
// and announces the outcome.
type TallyService struct {
	repo      Repository
	messenger messaging.Messenger
	channelID string
	now       func() time.Time
}

func NewTallyService(repo Repository, messenger messaging.Messenger, channelID string) *TallyService {
	return &TallyService{repo: repo, messenger: messenger, channelID: channelID, now: time.Now}
}

// RunTally is the scheduled tally: a roll that was already announced is
// skipped with ErrAlreadyAnnounced.
func (t *TallyService) RunTally(ctx context.Context) (models.VoteResult, error) {
	return t.tally(ctx, false)
}

// Retally announces again with the current counts even if already announced.
func (t *TallyService) Retally(ctx context.Context) (models.VoteResult, error) {
	return t.tally(ctx, true)
}

func (t *TallyService) tally(ctx context.Context, force bool) (models.VoteResult, error) {
	period, err := t.repo.MostRecentClosedPeriod(ctx)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("most recent closed period: %w", err)
	}

	roll, err := t.repo.GetRollByPeriod(ctx, period.ID)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("roll for period %d: %w", period.ID, err)
	}
	if !roll.VotingStarted() {
		return models.VoteResult{}, ErrVoteNotStarted
	}
	if roll.AnnouncedAt != nil && !force {
		return models.VoteResult{}, ErrAlreadyAnnounced
	}

	counts, err := t.messenger.GetReactionCounts(ctx, *roll.VoteMessage)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("reaction counts: %w", err)
	}

	sub1, err := t.repo.GetSubmission(ctx, roll.Selection1)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("selection 1: %w", err)
	}
	sub2, err := t.repo.GetSubmission(ctx, roll.Selection2)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("selection 2: %w", err)
	}

	result := Decide(roll, counts)
	result.Announcement = Announcement(result, sub1, sub2)

	if _, err := t.messenger.PostMessage(ctx, t.channelID, result.Announcement); err != nil {
		return models.VoteResult{}, fmt.Errorf("announce: %w", err)
	}

	// The announcement is out; failing to stamp it only risks a repeat next week
	if err := t.repo.MarkAnnounced(ctx, roll.ID, t.now()); err != nil {
		slog.Error("failed to mark roll announced", "roll_id", roll.ID, "error", err)
	}

	slog.Info("tally announced", "period_id", period.ID, "roll_id", roll.ID,
		"selection_1_votes", result.Selection1Votes, "selection_2_votes", result.Selection2Votes,
		"tie", result.Tie)
	return result, nil
}

// Decide compares the two emote counts. Strictly more votes wins; equal is a tie.
func Decide(roll models.Roll, counts map[string]int) models.VoteResult {
	result := models.VoteResult{PeriodID: roll.PeriodID, RollID: roll.ID}
	if roll.Selection1Emote != nil {
		result.Selection1Votes = counts[*roll.Selection1Emote]
	}
	if roll.Selection2Emote != nil {
		result.Selection2Votes = counts[*roll.Selection2Emote]
	}

	switch {
	case result.Selection1Votes > result.Selection2Votes:
		winner := roll.Selection1
		result.WinnerID = &winner
	case result.Selection2Votes > result.Selection1Votes:
		winner := roll.Selection2
		result.WinnerID = &winner
	default:
		result.Tie = true
	}
	return result
}

// Announcement renders the result for the movie channel.
func Announcement(result models.VoteResult, sub1, sub2 models.Submission) string {
	if result.Tie {
		return fmt.Sprintf("%s and %s tied with %d votes each!", sub1.Title, sub2.Title, result.Selection1Votes)
	}
	winner, loser := sub1, sub2
	winVotes, loseVotes := result.Selection1Votes, result.Selection2Votes
	if result.WinnerID != nil && *result.WinnerID == sub2.ID {
		winner, loser = sub2, sub1
		winVotes, loseVotes = loseVotes, winVotes
	}
	return fmt.Sprintf("%s wins over %s, %d to %d!", winner.Title, loser.Title, winVotes, loseVotes)
}
