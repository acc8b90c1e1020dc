// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractIMDbID(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		expectedID string
		expectedOK bool
	}{
		{"bare link", "https://www.imdb.com/title/tt0133093/", "tt0133093", true},
		{"link in text", "The Matrix https://imdb.com/title/tt0133093/?ref_=fn", "tt0133093", true},
		{"mobile link", "http://m.imdb.com/title/tt0083658", "tt0083658", true},
		{"plain title", "Blade Runner", "", false},
		{"other site", "https://letterboxd.com/film/tt-something/", "", false},
		{"imdb without id", "https://www.imdb.com/chart/top/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractIMDbID(tt.text)
			if ok != tt.expectedOK || id != tt.expectedID {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.expectedID, tt.expectedOK, id, ok)
			}
		})
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
			return
		}
		switch r.URL.Query().Get("i") {
		case "tt0133093":
			w.Write([]byte(`{"Title":"The Matrix","Year":"1999","imdbID":"tt0133093","Response":"True"}`))
		case "tt0000000":
			w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
		default:
			w.Write([]byte(`not json`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupByID(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, "key")
	ctx := context.Background()

	movie, err := client.LookupByID(ctx, "tt0133093")
	if err != nil {
		t.Fatalf("LookupByID failed: %v", err)
	}
	if movie.Title != "The Matrix" || movie.Year != "1999" {
		t.Errorf("unexpected movie %+v", movie)
	}
	if movie.Link() != "https://www.imdb.com/title/tt0133093/" {
		t.Errorf("unexpected link %q", movie.Link())
	}

	if _, err := client.LookupByID(ctx, "tt0000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := client.LookupByID(ctx, "tt9999999"); err == nil {
		t.Error("expected error for garbage response")
	}
	if _, err := NewClient(srv.URL, "wrong").LookupByID(ctx, "tt0133093"); err == nil {
		t.Error("expected error for bad key")
	}
	if _, err := NewClient(srv.URL, "").LookupByID(ctx, "tt0133093"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, "key")
	ctx := context.Background()

	title, link, err := client.Normalize(ctx, "check this https://www.imdb.com/title/tt0133093/")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if title != "The Matrix (1999)" || link != "https://www.imdb.com/title/tt0133093/" {
		t.Errorf("unexpected result %q %q", title, link)
	}

	if _, _, err := client.Normalize(ctx, "The Matrix"); !errors.Is(err, ErrNoLink) {
		t.Errorf("expected ErrNoLink, got %v", err)
	}
}
