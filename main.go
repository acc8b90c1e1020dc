// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/movie-night/cliparse"
	"github.com/danielhkuo/movie-night/commands"
	"github.com/danielhkuo/movie-night/db"
	"github.com/danielhkuo/movie-night/discord"
	"github.com/danielhkuo/movie-night/middleware"
	"github.com/danielhkuo/movie-night/movienight"
	"github.com/danielhkuo/movie-night/omdb"
	"github.com/danielhkuo/movie-night/router"
	"github.com/danielhkuo/movie-night/scheduler"
	"github.com/danielhkuo/movie-night/store"
)

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("movie-night stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database and create tables
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	repo := store.New(dbConn)

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	messenger := discord.NewMessenger(session)
	tally := movienight.NewTallyService(repo, messenger, cfg.MovieChannelID)

	anchor, err := scheduler.ParseWeekly(cfg.AnchorDay, cfg.AnchorTime, cfg.AnchorZone)
	if err != nil {
		return err
	}
	sched := scheduler.New(anchor, tally)

	var normalizer commands.Normalizer
	if cfg.OMDbAPIKey != "" {
		normalizer = omdb.NewClient(cfg.OMDbURL, cfg.OMDbAPIKey)
	} else {
		slog.Warn("OMDB_API_KEY not set, IMDb links will not be resolved")
	}

	handler := commands.NewHandler(cfg, repo, messenger, tally, normalizer)
	bot := discord.NewBot(session, messenger, handler)
	if err := bot.Start(ctx); err != nil {
		return err
	}
	defer bot.Close()

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scheduler stopped", "error", err)
		}
	}()

	server := http.Server{
		Handler: middleware.CORS(router.NewRouter(repo, tally, sched, cfg)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "port", cfg.Port, "next_tally", sched.NextTally())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		stop()
		<-schedDone
		return err
	}

	<-schedDone
	slog.Info("Server closed")
	return nil
}
