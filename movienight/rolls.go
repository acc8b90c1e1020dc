// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package movienight

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/danielhkuo/movie-night/models"
)

// MaxDrawAttempts caps the rejection loop in Draw.
const MaxDrawAttempts = 10000

// RollEngine draws and stores the head-to-head pair for a period.
type RollEngine struct {
	repo Repository

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRollEngine uses src for randomness; nil seeds a fresh PCG source.
func NewRollEngine(repo Repository, src rand.Source) *RollEngine {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RollEngine{repo: repo, rng: rand.New(src)}
}

func (e *RollEngine) GetForPeriod(ctx context.Context, periodID int64) (models.Roll, error) {
	return e.repo.GetRollByPeriod(ctx, periodID)
}

// DrawIndices picks two distinct indices in [0, n) uniformly over ordered pairs.
// B is redrawn until it differs from A.
func (e *RollEngine) DrawIndices(n int) (int, int, error) {
	if n < 2 {
		return 0, 0, ErrInsufficientCandidates
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	a := e.rng.IntN(n)
	for i := 0; i < MaxDrawAttempts; i++ {
		if b := e.rng.IntN(n); b != a {
			return a, b, nil
		}
	}
	return 0, 0, ErrDrawExhausted
}

// Draw picks two distinct submissions.
func (e *RollEngine) Draw(subs []models.Submission) (models.Submission, models.Submission, error) {
	a, b, err := e.DrawIndices(len(subs))
	if err != nil {
		return models.Submission{}, models.Submission{}, err
	}
	return subs[a], subs[b], nil
}

// Create stores the roll. ErrConflict if the period already has one; the
// caller decides whether to delete it and roll again.
func (e *RollEngine) Create(ctx context.Context, periodID int64, sel1, sel2 models.Submission) (models.Roll, error) {
	if sel1.ID == sel2.ID {
		return models.Roll{}, fmt.Errorf("same submission drawn twice: %w", ErrInvalidState)
	}
	if sel1.PeriodID != periodID || sel2.PeriodID != periodID {
		return models.Roll{}, fmt.Errorf("selection outside period %d: %w", periodID, ErrInvalidState)
	}

	roll, err := e.repo.CreateRoll(ctx, periodID, sel1.ID, sel2.ID)
	if err != nil {
		return models.Roll{}, err
	}

	slog.Info("roll created", "period_id", periodID, "roll_id", roll.ID,
		"selection_1", sel1.ID, "selection_2", sel2.ID)
	return roll, nil
}

func (e *RollEngine) Delete(ctx context.Context, roll models.Roll) error {
	if err := e.repo.DeleteRoll(ctx, roll.ID); err != nil {
		return err
	}

	slog.Info("roll deleted", "period_id", roll.PeriodID, "roll_id", roll.ID)
	return nil
}

// AssignEmotesAndVoteMessage records which emote votes for which selection.
func (e *RollEngine) AssignEmotesAndVoteMessage(ctx context.Context, roll models.Roll, emote1, emote2 string, ref models.MessageRef) (models.Roll, error) {
	if emote1 == "" || emote2 == "" || emote1 == emote2 {
		return models.Roll{}, fmt.Errorf("two different emotes are required: %w", ErrInvalidState)
	}
	return e.repo.AssignVote(ctx, roll.ID, emote1, emote2, ref)
}
