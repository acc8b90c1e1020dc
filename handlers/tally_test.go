// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/movienight"
	"github.com/danielhkuo/movie-night/testutil"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

type fixedSchedule time.Time

func (f fixedSchedule) NextTally() time.Time { return time.Time(f) }

func TestTally(t *testing.T) {
	repo := testutil.SetupTestStore(t)
	messenger := testutil.NewFakeMessenger()
	tally := movienight.NewTallyService(repo, messenger, testutil.TestChannelID)
	handler := NewTallyHandler(tally, fixedSchedule(time.Now()))

	req := testutil.MakeRequest("POST", "/tally", nil, nil)

	w := httptest.NewRecorder()
	handler.Tally(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	period := testutil.CreateTestPeriod(t, repo, true)
	x := testutil.AddTestSubmission(t, repo, period.ID, "alice", "Movie X")
	y := testutil.AddTestSubmission(t, repo, period.ID, "bob", "Movie Y")
	roll, err := repo.CreateRoll(req.Context(), period.ID, x.ID, y.ID)
	if err != nil {
		t.Fatalf("CreateRoll failed: %v", err)
	}

	w = httptest.NewRecorder()
	handler.Tally(w, req)
	testutil.AssertStatus(t, w, http.StatusConflict)

	ref := models.MessageRef{ChannelID: testutil.TestChannelID, MessageID: "vote"}
	if _, err := repo.AssignVote(req.Context(), roll.ID, "🅰️", "🅱️", ref); err != nil {
		t.Fatalf("AssignVote failed: %v", err)
	}
	messenger.SetReactionCounts(ref, map[string]int{"🅰️": 4, "🅱️": 4})

	w = httptest.NewRecorder()
	handler.Tally(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var result models.VoteResult
	testutil.AssertJSON(t, w, &result)
	if !result.Tie || result.WinnerID != nil || result.Selection1Votes != 4 {
		t.Errorf("Expected a 4-4 tie, got %+v", result)
	}
	if got := messenger.LastMessage().Content; got != "Movie X and Movie Y tied with 4 votes each!" {
		t.Errorf("Unexpected announcement %q", got)
	}
}

func TestSchedule(t *testing.T) {
	now := time.Date(2026, 1, 7, 20, 0, 0, 0, time.UTC)
	next := now.Add(50 * time.Hour)
	handler := NewTallyHandler(nil, fixedSchedule(next))
	handler.now = func() time.Time { return now }

	req := testutil.MakeRequest("GET", "/schedule", nil, nil)
	w := httptest.NewRecorder()
	handler.Schedule(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ScheduleResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.NextTally.Equal(next) {
		t.Errorf("Expected next tally %s, got %s", next, resp.NextTally)
	}
	if resp.Wait != "50h0m0s" {
		t.Errorf("Expected wait 50h0m0s, got %s", resp.Wait)
	}
	if !strings.HasSuffix(resp.Relative, "from now") {
		t.Errorf("Expected a future relative time, got %q", resp.Relative)
	}
}
