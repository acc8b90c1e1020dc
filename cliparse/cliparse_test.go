// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("MOVIE_CHANNEL", "123")
	t.Setenv("ADMIN_KEY", "admin")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CONFIRM_TIMEOUT", "30s")
	t.Setenv("MODERATORS", "1,2")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.ConfirmTimeout != 30*time.Second {
		t.Errorf("expected confirm timeout 30s, got %v", cfg.ConfirmTimeout)
	}
	if len(cfg.Moderators) != 2 || cfg.Moderators[1] != "2" {
		t.Errorf("expected two moderators, got %v", cfg.Moderators)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.CommandPrefix != "!m" {
		t.Errorf("expected prefix !m, got %s", cfg.CommandPrefix)
	}
	if cfg.EmoteTimeout != 5*time.Minute {
		t.Errorf("expected emote timeout 5m, got %v", cfg.EmoteTimeout)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:other.db", "-anchor-day", "sunday"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:other.db" {
		t.Errorf("expected CLI database URL, got %s", cfg.DatabaseURL)
	}
	if cfg.AnchorDay != "sunday" {
		t.Errorf("expected sunday, got %s", cfg.AnchorDay)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"database url", "DATABASE_URL"},
		{"discord token", "DISCORD_TOKEN"},
		{"movie channel", "MOVIE_CHANNEL"},
		{"admin key", "ADMIN_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			os.Unsetenv(tt.unset)

			if _, err := ParseFlags([]string{}); err == nil {
				t.Errorf("expected error when %s is missing", tt.unset)
			}
		})
	}
}

func TestParseFlags_InvalidDatabaseType(t *testing.T) {
	setRequiredEnv(t)

	if _, err := ParseFlags([]string{"-t", "mysql"}); err == nil {
		t.Error("expected error for unsupported database type")
	}
}
