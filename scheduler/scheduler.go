// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
)

// Tallier runs one tally.
type Tallier interface {
	RunTally(ctx context.Context) (models.VoteResult, error)
}

// Scheduler calls the tally at every weekly anchor. The wait is recomputed
// from the wall clock each cycle.
type Scheduler struct {
	anchor Weekly
	tally  Tallier

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	lastFire time.Time
	runs     int
}

func New(anchor Weekly, tally Tallier) *Scheduler {
	return &Scheduler{
		anchor: anchor,
		tally:  tally,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextTally reports when the loop will next fire.
func (s *Scheduler) NextTally() time.Time {
	now := s.now()
	return now.Add(s.anchor.Wait(now))
}

// Runs returns how many tallies have been attempted.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Run loops until ctx is cancelled. A failed or panicking tally is logged
// and the loop carries on.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("vote scheduler started", "anchor", s.anchor.String())

	for {
		now := s.now()
		wait := s.anchor.Wait(now)
		target := now.Add(wait)

		// Never fire twice for the same anchor
		if !s.lastFire.IsZero() && !target.After(s.lastFire) {
			target = s.anchor.Next(s.lastFire.Add(time.Second))
			wait = target.Sub(now)
		}

		slog.Info("next tally scheduled", "at", target.Format(time.RFC3339),
			"in", humanize.RelTime(now, target, "ago", "from now"))

		if err := s.sleep(ctx, wait); err != nil {
			slog.Info("vote scheduler stopped", "reason", err)
			return err
		}

		s.lastFire = target
		s.fire(ctx)
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	result, err := s.runTally(ctx)
	switch {
	case err == nil:
		slog.Info("scheduled tally complete", "period_id", result.PeriodID, "roll_id", result.RollID, "tie", result.Tie)
	case errors.Is(err, movienight.ErrNotFound),
		errors.Is(err, movienight.ErrVoteNotStarted),
		errors.Is(err, movienight.ErrAlreadyAnnounced):
		slog.Info("scheduled tally skipped", "reason", err)
	default:
		slog.Error("scheduled tally failed", "error", err)
	}
}

func (s *Scheduler) runTally(ctx context.Context) (result models.VoteResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tally panicked: %v", r)
		}
	}()
	return s.tally.RunTally(ctx)
}
