// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
)

// fakeClock jumps forward instead of sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// fakeTallier records when it was called and plays back canned outcomes.
type fakeTallier struct {
	clock    *fakeClock
	outcomes []func() error
	calls    []time.Time
	stopAt   int
	cancel   context.CancelFunc
}

func (f *fakeTallier) RunTally(ctx context.Context) (models.VoteResult, error) {
	f.calls = append(f.calls, f.clock.Now())
	if len(f.calls) >= f.stopAt {
		f.cancel()
	}
	if i := len(f.calls) - 1; i < len(f.outcomes) {
		return models.VoteResult{}, f.outcomes[i]()
	}
	return models.VoteResult{PeriodID: 1, RollID: 1}, nil
}

func newTestScheduler(t *testing.T, anchor Weekly, start time.Time, stopAt int, outcomes ...func() error) (*Scheduler, *fakeTallier, context.Context) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := &fakeClock{now: start}
	tally := &fakeTallier{clock: clock, outcomes: outcomes, stopAt: stopAt, cancel: cancel}

	s := New(anchor, tally)
	s.now = clock.Now
	s.sleep = clock.Sleep
	return s, tally, ctx
}

func TestSchedulerFiresOnAnchors(t *testing.T) {
	anchor := mustWeekly(t, "friday", "20:00", "UTC")
	start := time.Date(2026, 1, 7, 9, 30, 0, 0, time.UTC) // Wednesday

	s, tally, ctx := newTestScheduler(t, anchor, start, 3)

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	expected := []time.Time{
		time.Date(2026, 1, 9, 20, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 16, 20, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 23, 20, 0, 0, 0, time.UTC),
	}
	if len(tally.calls) != len(expected) {
		t.Fatalf("expected %d tallies, got %d", len(expected), len(tally.calls))
	}
	for i, want := range expected {
		if !tally.calls[i].Equal(want) {
			t.Errorf("tally %d: expected %s, got %s", i, want, tally.calls[i])
		}
	}
	if s.Runs() != 3 {
		t.Errorf("expected 3 runs, got %d", s.Runs())
	}
}

func TestSchedulerSurvivesFailures(t *testing.T) {
	anchor := mustWeekly(t, "friday", "20:00", "UTC")
	start := time.Date(2026, 1, 9, 20, 0, 0, 0, time.UTC) // exactly on an anchor

	s, tally, ctx := newTestScheduler(t, anchor, start, 5,
		func() error { return errors.New("database is locked") },
		func() error { panic("boom") },
		func() error { return movienight.ErrNotFound },
		func() error { return movienight.ErrAlreadyAnnounced },
	)

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if len(tally.calls) != 5 {
		t.Fatalf("expected the loop to keep going for 5 tallies, got %d", len(tally.calls))
	}
	for i := 1; i < len(tally.calls); i++ {
		if gap := tally.calls[i].Sub(tally.calls[i-1]); gap != Week {
			t.Errorf("tally %d: expected a week after the previous one, got %s", i, gap)
		}
	}
}

func TestSchedulerDST(t *testing.T) {
	anchor := mustWeekly(t, "friday", "20:00", "America/New_York")
	start := time.Date(2026, 2, 25, 12, 0, 0, 0, anchor.Loc)

	s, tally, ctx := newTestScheduler(t, anchor, start, 4)
	_ = s.Run(ctx)

	for i, at := range tally.calls {
		local := at.In(anchor.Loc)
		if local.Weekday() != time.Friday || local.Hour() != 20 || local.Minute() != 0 {
			t.Errorf("tally %d fired at %s, expected Friday 20:00 local", i, local)
		}
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	anchor := mustWeekly(t, "friday", "20:00", "UTC")
	s := New(anchor, &fakeTallier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	if s.Runs() != 0 {
		t.Errorf("expected no tallies, got %d", s.Runs())
	}
}

func TestNextTally(t *testing.T) {
	anchor := mustWeekly(t, "friday", "20:00", "UTC")
	s := New(anchor, &fakeTallier{})
	s.now = func() time.Time { return time.Date(2026, 1, 7, 9, 30, 0, 0, time.UTC) }

	expected := time.Date(2026, 1, 9, 20, 0, 0, 0, time.UTC)
	if got := s.NextTally(); !got.Equal(expected) {
		t.Errorf("expected %s, got %s", expected, got)
	}
}
