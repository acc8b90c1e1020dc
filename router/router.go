// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/movie-night/cliparse"
	"github.com/danielhkuo/movie-night/handlers"
	"github.com/danielhkuo/movie-night/middleware"
	"github.com/danielhkuo/movie-night/movienight"
)

func NewRouter(repo movienight.Repository, tally handlers.Retallier, scheduler handlers.NextTallier, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	periodHandler := handlers.NewPeriodHandler(repo)
	tallyHandler := handlers.NewTallyHandler(tally, scheduler)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Periods and rolls (public, read only)
	mux.HandleFunc("GET /periods", middleware.WithLogging(periodHandler.ListPeriods))
	mux.HandleFunc("GET /periods/current", middleware.WithLogging(periodHandler.CurrentPeriod))
	mux.HandleFunc("GET /periods/{id}/roll", middleware.WithLogging(periodHandler.GetRoll))

	// Scheduler
	mux.HandleFunc("GET /schedule", middleware.WithLogging(tallyHandler.Schedule))
	mux.HandleFunc("POST /tally", middleware.WithLogging(middleware.RequireAdminKey(cfg.AdminKey, tallyHandler.Tally)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("movie-night API v1"))
	})

	return mux
}
