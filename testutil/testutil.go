// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/movie-night/cliparse"
	"github.com/danielhkuo/movie-night/db"
	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/store"
)

// TestChannelID is the movie channel used by GetTestConfig
const TestChannelID = "movie-channel"

// SetupTestDB creates a fresh SQLite database file with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "movie-night.db")
	conn, err := db.Open(models.DatabaseSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, models.DatabaseSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a Store over a fresh test database
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    "file::memory:",
		DatabaseType:   models.DatabaseSQLite,
		DiscordToken:   "test-token",
		MovieChannelID: TestChannelID,
		CommandPrefix:  "!m",
		Moderators:     []string{"mod"},
		ModeratorRoles: []string{"mod-role"},
		AnchorDay:      "friday",
		AnchorTime:     "20:00",
		AnchorZone:     "UTC",
		ConfirmTimeout: 200 * time.Millisecond,
		EmoteTimeout:   200 * time.Millisecond,
		VotingWindow:   168 * time.Hour,
		AdminKey:       "test-admin-key",
	}
}

// CreateTestPeriod creates a period and returns it; closed periods end now
func CreateTestPeriod(t *testing.T, s *store.Store, closed bool) models.Period {
	t.Helper()

	ctx := context.Background()
	p, err := s.CreatePeriod(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Failed to create test period: %v", err)
	}
	if closed {
		p, err = s.ClosePeriod(ctx, p.ID, time.Now())
		if err != nil {
			t.Fatalf("Failed to close test period: %v", err)
		}
	}
	return p
}

// AddTestSubmission adds a submission for a user and returns it
func AddTestSubmission(t *testing.T, s *store.Store, periodID int64, submitterID, title string) models.Submission {
	t.Helper()

	sub, err := s.CreateSubmission(context.Background(), models.Submission{
		PeriodID:    periodID,
		SubmitterID: submitterID,
		Title:       title,
	})
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}
	return sub
}

// CreateTestRoll creates a roll with voting already started
func CreateTestRoll(t *testing.T, s *store.Store, periodID, sel1, sel2 int64, emote1, emote2 string, ref models.MessageRef) models.Roll {
	t.Helper()

	ctx := context.Background()
	r, err := s.CreateRoll(ctx, periodID, sel1, sel2)
	if err != nil {
		t.Fatalf("Failed to create test roll: %v", err)
	}
	r, err = s.AssignVote(ctx, r.ID, emote1, emote2, ref)
	if err != nil {
		t.Fatalf("Failed to assign test vote: %v", err)
	}
	return r
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
