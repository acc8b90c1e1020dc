// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/testutil"
)

func TestListPeriods(t *testing.T) {
	repo := testutil.SetupTestStore(t)
	handler := NewPeriodHandler(repo)

	closed := testutil.CreateTestPeriod(t, repo, true)
	x := testutil.AddTestSubmission(t, repo, closed.ID, "alice", "Movie X")
	y := testutil.AddTestSubmission(t, repo, closed.ID, "bob", "Movie Y")
	testutil.CreateTestRoll(t, repo, closed.ID, x.ID, y.ID, "🅰️", "🅱️", models.MessageRef{ChannelID: "c", MessageID: "m"})
	open := testutil.CreateTestPeriod(t, repo, false)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"default limit", "", http.StatusOK, 2},
		{"limit one", "?limit=1", http.StatusOK, 1},
		{"bad limit", "?limit=zero", http.StatusBadRequest, 0},
		{"limit too large", "?limit=1000", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/periods"+tt.query, nil, nil)
			w := httptest.NewRecorder()

			handler.ListPeriods(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp []models.PeriodSummary
			testutil.AssertJSON(t, w, &resp)
			if len(resp) != tt.expectedCount {
				t.Fatalf("Expected %d periods, got %d", tt.expectedCount, len(resp))
			}
			if resp[0].Period.ID != open.ID || resp[0].Roll != nil {
				t.Errorf("Expected the open period first without a roll, got %+v", resp[0])
			}
			if resp[0].StartedAt == "" {
				t.Error("Expected a relative start time")
			}
			if tt.expectedCount == 2 {
				if resp[1].Roll == nil || resp[1].Roll.Selection1.Title != "Movie X" {
					t.Errorf("Expected the closed period's roll, got %+v", resp[1].Roll)
				}
			}
		})
	}
}

func TestCurrentPeriod(t *testing.T) {
	repo := testutil.SetupTestStore(t)
	handler := NewPeriodHandler(repo)

	req := testutil.MakeRequest("GET", "/periods/current", nil, nil)
	w := httptest.NewRecorder()
	handler.CurrentPeriod(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	period := testutil.CreateTestPeriod(t, repo, false)

	w = httptest.NewRecorder()
	handler.CurrentPeriod(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CurrentPeriodResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Period.ID != period.ID || resp.Submissions == nil || len(resp.Submissions) != 0 {
		t.Errorf("Unexpected empty period response %+v", resp)
	}

	testutil.AddTestSubmission(t, repo, period.ID, "alice", "Movie X")
	testutil.AddTestSubmission(t, repo, period.ID, "bob", "Movie Y")

	w = httptest.NewRecorder()
	handler.CurrentPeriod(w, req)
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Submissions) != 2 || resp.Submissions[0].Title != "Movie X" {
		t.Errorf("Expected submissions in insertion order, got %+v", resp.Submissions)
	}
}

func TestGetRoll(t *testing.T) {
	repo := testutil.SetupTestStore(t)
	handler := NewPeriodHandler(repo)

	rolled := testutil.CreateTestPeriod(t, repo, true)
	x := testutil.AddTestSubmission(t, repo, rolled.ID, "alice", "Movie X")
	y := testutil.AddTestSubmission(t, repo, rolled.ID, "bob", "Movie Y")
	roll := testutil.CreateTestRoll(t, repo, rolled.ID, x.ID, y.ID, "🅰️", "🅱️", models.MessageRef{ChannelID: "c", MessageID: "m"})
	unrolled := testutil.CreateTestPeriod(t, repo, false)

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{"rolled period", itoa(rolled.ID), http.StatusOK},
		{"period without roll", itoa(unrolled.ID), http.StatusNotFound},
		{"missing period", "999", http.StatusNotFound},
		{"invalid id", "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/periods/"+tt.id+"/roll", nil, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.GetRoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.RollView
			testutil.AssertJSON(t, w, &resp)
			if resp.Roll.ID != roll.ID || resp.Selection2.Title != "Movie Y" {
				t.Errorf("Unexpected roll view %+v", resp)
			}
			if resp.Roll.Selection1Emote == nil || *resp.Roll.Selection1Emote != "🅰️" {
				t.Errorf("Expected emotes in the roll, got %+v", resp.Roll)
			}
		})
	}
}
