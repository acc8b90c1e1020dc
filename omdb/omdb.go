// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package omdb looks up movie metadata on the OMDb API so that IMDb links in
// submissions can be turned into a proper title and canonical link.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrNotFound = errors.New("movie not found")
	ErrNoAPIKey = errors.New("omdb api key not configured")
	ErrNoLink   = errors.New("no imdb link in text")
)

// Movie is the subset of an OMDb record the bot uses.
type Movie struct {
	IMDbID string
	Title  string
	Year   string
}

// Link is the canonical IMDb page for the movie.
func (m Movie) Link() string {
	return TitleLink(m.IMDbID)
}

// TitleLink builds the canonical IMDb page for an id like tt0133093.
func TitleLink(id string) string {
	return "https://www.imdb.com/title/" + id + "/"
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LookupByID fetches a movie by IMDb id.
func (c *Client) LookupByID(ctx context.Context, id string) (Movie, error) {
	if c.apiKey == "" {
		return Movie{}, ErrNoAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Movie{}, fmt.Errorf("parse omdb url: %w", err)
	}
	q := u.Query()
	q.Set("apikey", c.apiKey)
	q.Set("i", id)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Movie{}, fmt.Errorf("build omdb request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Movie{}, fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Movie{}, fmt.Errorf("read omdb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Movie{}, fmt.Errorf("omdb returned status %d", resp.StatusCode)
	}

	movie, err := parseMovie(body)
	if err != nil {
		return Movie{}, fmt.Errorf("lookup %s: %w", id, err)
	}

	slog.Debug("omdb lookup", "imdb_id", id, "title", movie.Title)
	return movie, nil
}

func parseMovie(body []byte) (Movie, error) {
	if !gjson.ValidBytes(body) {
		return Movie{}, errors.New("invalid json from omdb")
	}

	res := gjson.ParseBytes(body)
	if !res.Get("Response").Bool() {
		msg := res.Get("Error").String()
		if strings.Contains(strings.ToLower(msg), "not found") || strings.Contains(strings.ToLower(msg), "incorrect imdb id") {
			return Movie{}, ErrNotFound
		}
		return Movie{}, fmt.Errorf("omdb error: %s", msg)
	}

	movie := Movie{
		IMDbID: res.Get("imdbID").String(),
		Title:  res.Get("Title").String(),
		Year:   res.Get("Year").String(),
	}
	if movie.Title == "" || movie.IMDbID == "" {
		return Movie{}, ErrNotFound
	}
	return movie, nil
}

// ExtractIMDbID finds the first IMDb title link in free text and returns
// its tt id.
func ExtractIMDbID(text string) (string, bool) {
	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		if !strings.Contains(lower, "imdb") || !strings.HasPrefix(lower, "http") {
			continue
		}
		u, err := url.Parse(word)
		if err != nil {
			continue
		}
		for _, seg := range strings.Split(u.Path, "/") {
			if len(seg) > 2 && strings.HasPrefix(seg, "tt") {
				return seg, true
			}
		}
	}
	return "", false
}

// Normalize resolves an IMDb link in text to the movie's title and
// canonical link. ErrNoLink when there is nothing to resolve.
func (c *Client) Normalize(ctx context.Context, text string) (title, link string, err error) {
	id, ok := ExtractIMDbID(text)
	if !ok {
		return "", "", ErrNoLink
	}
	movie, err := c.LookupByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	if movie.Year != "" {
		return fmt.Sprintf("%s (%s)", movie.Title, movie.Year), movie.Link(), nil
	}
	return movie.Title, movie.Link(), nil
}
