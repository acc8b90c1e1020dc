// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// Discord
	DiscordToken   string   `env:"DISCORD_TOKEN"`
	MovieChannelID string   `env:"MOVIE_CHANNEL"`
	CommandPrefix  string   `env:"COMMAND_PREFIX" envDefault:"!m"`
	Moderators     []string `env:"MODERATORS" envSeparator:","`
	ModeratorRoles []string `env:"MODERATOR_ROLES" envSeparator:","`

	// Weekly tally anchor
	AnchorDay  string `env:"ANCHOR_DAY" envDefault:"friday"`
	AnchorTime string `env:"ANCHOR_TIME" envDefault:"20:00"`
	AnchorZone string `env:"ANCHOR_TZ" envDefault:"America/New_York"`

	ConfirmTimeout time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"10s"`
	EmoteTimeout   time.Duration `env:"EMOTE_TIMEOUT" envDefault:"5m"`
	VotingWindow   time.Duration `env:"VOTING_WINDOW" envDefault:"168h"`

	// Metadata lookup
	OMDbAPIKey string `env:"OMDB_API_KEY"`
	OMDbURL    string `env:"OMDB_URL" envDefault:"http://www.omdbapi.com/"`

	// Secrets - MUST be provided
	AdminKey string `env:"ADMIN_KEY"`
}

// ParseFlags loads .env (when present) and the environment, then applies flags on top.
func ParseFlags(args []string) (Config, error) {
	// A missing .env is normal in production
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("movie-night", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "HTTP status API port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	fs.StringVar(&cfg.DiscordToken, "token", cfg.DiscordToken, "Discord bot token (prefer env)")
	fs.StringVar(&cfg.MovieChannelID, "channel", cfg.MovieChannelID, "Channel for votes and announcements")
	fs.StringVar(&cfg.CommandPrefix, "prefix", cfg.CommandPrefix, "Chat command prefix")

	fs.StringVar(&cfg.AnchorDay, "anchor-day", cfg.AnchorDay, "Weekday of the weekly tally")
	fs.StringVar(&cfg.AnchorTime, "anchor-time", cfg.AnchorTime, "Time of day (HH:MM) of the weekly tally")
	fs.StringVar(&cfg.AnchorZone, "anchor-tz", cfg.AnchorZone, "IANA time zone of the weekly tally")

	fs.DurationVar(&cfg.ConfirmTimeout, "confirm-timeout", cfg.ConfirmTimeout, "How long to wait for a confirmation")
	fs.DurationVar(&cfg.EmoteTimeout, "emote-timeout", cfg.EmoteTimeout, "How long to wait for vote emotes")
	fs.DurationVar(&cfg.VotingWindow, "voting-window", cfg.VotingWindow, "Voting window shown on the vote message")

	fs.StringVar(&cfg.OMDbAPIKey, "omdb-key", cfg.OMDbAPIKey, "OMDb API key (prefer env)")
	fs.StringVar(&cfg.OMDbURL, "omdb-url", cfg.OMDbURL, "OMDb endpoint")
	fs.StringVar(&cfg.AdminKey, "admin-key", cfg.AdminKey, "Admin key for POST /tally (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN required")
	}
	if cfg.MovieChannelID == "" {
		return Config{}, errors.New("MOVIE_CHANNEL required")
	}
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}
	if cfg.ConfirmTimeout <= 0 || cfg.EmoteTimeout <= 0 {
		return Config{}, errors.New("timeouts must be positive")
	}

	return cfg, nil
}
