// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/store"
	"github.com/danielhkuo/movie-night/testutil"
)

func TestSingleOpenPeriod(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	first, err := s.CreatePeriod(ctx, time.Now())
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}

	if _, err := s.CreatePeriod(ctx, time.Now()); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected ErrConflict for a second open period, got %v", err)
	}

	if _, err := s.ClosePeriod(ctx, first.ID, time.Now()); err != nil {
		t.Fatalf("ClosePeriod failed: %v", err)
	}
	if _, err := s.ClosePeriod(ctx, first.ID, time.Now()); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState closing twice, got %v", err)
	}
	if _, err := s.ClosePeriod(ctx, 9999, time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing period, got %v", err)
	}

	if _, err := s.CreatePeriod(ctx, time.Now()); err != nil {
		t.Errorf("Expected a new period after closing, got %v", err)
	}
}

func TestReopenPeriod(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	old := testutil.CreateTestPeriod(t, s, true)
	newer := testutil.CreateTestPeriod(t, s, false)

	if _, err := s.ReopenPeriod(ctx, old.ID); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected ErrConflict while a newer period is open, got %v", err)
	}
	if _, err := s.ReopenPeriod(ctx, newer.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState reopening an open period, got %v", err)
	}

	if _, err := s.ClosePeriod(ctx, newer.ID, time.Now()); err != nil {
		t.Fatalf("ClosePeriod failed: %v", err)
	}
	reopened, err := s.ReopenPeriod(ctx, old.ID)
	if err != nil {
		t.Fatalf("ReopenPeriod failed: %v", err)
	}
	if !reopened.Open() {
		t.Error("Expected reopened period to be open")
	}
}

func TestSubmissionUniqueness(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	period := testutil.CreateTestPeriod(t, s, false)

	original := testutil.AddTestSubmission(t, s, period.ID, "alice", "Movie X")

	_, err := s.CreateSubmission(ctx, models.Submission{PeriodID: period.ID, SubmitterID: "alice", Title: "Movie Z"})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Expected ErrConflict for a duplicate submitter, got %v", err)
	}

	replaced, err := s.ReplaceSubmission(ctx, original, "Movie Z", "")
	if err != nil {
		t.Fatalf("ReplaceSubmission failed: %v", err)
	}
	if replaced.Title != "Movie Z" || replaced.SubmitterID != "alice" {
		t.Errorf("Unexpected replacement: %+v", replaced)
	}

	if _, err := s.ReplaceSubmission(ctx, original, "Movie W", ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound replacing a removed submission, got %v", err)
	}

	subs, err := s.ListSubmissions(ctx, period.ID)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 1 || subs[0].Title != "Movie Z" {
		t.Errorf("Expected exactly one submission titled Movie Z, got %+v", subs)
	}
}

func TestRollConstraints(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	period := testutil.CreateTestPeriod(t, s, true)
	x := testutil.AddTestSubmission(t, s, period.ID, "alice", "Movie X")
	y := testutil.AddTestSubmission(t, s, period.ID, "bob", "Movie Y")

	if _, err := s.CreateRoll(ctx, period.ID, x.ID, x.ID); !errors.Is(err, store.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState for identical selections, got %v", err)
	}

	roll, err := s.CreateRoll(ctx, period.ID, x.ID, y.ID)
	if err != nil {
		t.Fatalf("CreateRoll failed: %v", err)
	}
	if _, err := s.CreateRoll(ctx, period.ID, y.ID, x.ID); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected ErrConflict for a second roll, got %v", err)
	}

	ref := models.MessageRef{ChannelID: "c", MessageID: "m"}
	updated, err := s.AssignVote(ctx, roll.ID, "🅰️", "🅱️", ref)
	if err != nil {
		t.Fatalf("AssignVote failed: %v", err)
	}
	if updated.VoteMessage == nil || *updated.VoteMessage != ref {
		t.Errorf("Expected vote message %+v, got %+v", ref, updated.VoteMessage)
	}

	if err := s.MarkAnnounced(ctx, roll.ID, time.Now()); err != nil {
		t.Fatalf("MarkAnnounced failed: %v", err)
	}
	got, err := s.GetRollByPeriod(ctx, period.ID)
	if err != nil {
		t.Fatalf("GetRollByPeriod failed: %v", err)
	}
	if got.AnnouncedAt == nil {
		t.Error("Expected announced_at to be set")
	}

	if err := s.DeleteRoll(ctx, roll.ID); err != nil {
		t.Fatalf("DeleteRoll failed: %v", err)
	}
	if err := s.DeleteRoll(ctx, roll.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestRolledSubmissionsCannotBeRemoved(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	period := testutil.CreateTestPeriod(t, s, true)
	x := testutil.AddTestSubmission(t, s, period.ID, "alice", "Movie X")
	y := testutil.AddTestSubmission(t, s, period.ID, "bob", "Movie Y")
	z := testutil.AddTestSubmission(t, s, period.ID, "carol", "Movie Z")
	roll := testutil.CreateTestRoll(t, s, period.ID, x.ID, y.ID, "🅰️", "🅱️", models.MessageRef{ChannelID: "c", MessageID: "m"})
	if _, err := s.ReopenPeriod(ctx, period.ID); err != nil {
		t.Fatalf("ReopenPeriod failed: %v", err)
	}

	_, err := s.ReplaceSubmission(ctx, x, "Movie W", "")
	if !errors.Is(err, store.ErrInRoll) || !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected ErrInRoll replacing a selected submission, got %v", err)
	}
	if err := s.DeleteSubmission(ctx, y.ID); !errors.Is(err, store.ErrInRoll) {
		t.Errorf("Expected ErrInRoll deleting a selected submission, got %v", err)
	}

	got, err := s.GetRollByPeriod(ctx, period.ID)
	if err != nil {
		t.Fatalf("Roll should survive: %v", err)
	}
	if got.ID != roll.ID {
		t.Errorf("Expected roll %d, got %d", roll.ID, got.ID)
	}
	if _, err := s.GetSubmission(ctx, x.ID); err != nil {
		t.Errorf("Selected submission should be kept: %v", err)
	}

	// Submissions outside the roll stay editable
	if err := s.DeleteSubmission(ctx, z.ID); err != nil {
		t.Errorf("DeleteSubmission of an unselected submission failed: %v", err)
	}

	// Once the roll is gone the selections are free again
	if err := s.DeleteRoll(ctx, roll.ID); err != nil {
		t.Fatalf("DeleteRoll failed: %v", err)
	}
	if err := s.DeleteSubmission(ctx, y.ID); err != nil {
		t.Errorf("DeleteSubmission after DeleteRoll failed: %v", err)
	}
}
