// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	"github.com/danielhkuo/movie-night/models"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, databaseType string) error {
	schema, err := SchemaFor(databaseType)
	if err != nil {
		return err
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SchemaFor returns the DDL for the given database type.
func SchemaFor(databaseType string) (string, error) {
	switch databaseType {
	case models.DatabaseSQLite:
		return sqliteSchema, nil
	case models.DatabasePostgres:
		return postgresSchema, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", databaseType)
	}
}

// Times are unix seconds. The open-period index holds a single row at most:
// every open period indexes the same value (TRUE).
const postgresSchema = `
-- Submission periods
CREATE TABLE IF NOT EXISTS period (
    id BIGSERIAL PRIMARY KEY,
    start_time BIGINT NOT NULL,
    end_time BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_period_single_open ON period ((end_time IS NULL)) WHERE end_time IS NULL;

-- Submissions
CREATE TABLE IF NOT EXISTS submission (
    id BIGSERIAL PRIMARY KEY,
    period_id BIGINT NOT NULL REFERENCES period(id) ON DELETE CASCADE,
    submitter_id TEXT NOT NULL,
    title TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    UNIQUE (period_id, submitter_id)
);

CREATE INDEX IF NOT EXISTS idx_submission_period_id ON submission(period_id);

-- Rolls. Selected submissions cannot be deleted while the roll exists.
CREATE TABLE IF NOT EXISTS roll (
    id BIGSERIAL PRIMARY KEY,
    period_id BIGINT NOT NULL UNIQUE REFERENCES period(id) ON DELETE CASCADE,
    selection_1 BIGINT NOT NULL REFERENCES submission(id) ON DELETE RESTRICT,
    selection_2 BIGINT NOT NULL REFERENCES submission(id) ON DELETE RESTRICT,
    selection_1_emote TEXT,
    selection_2_emote TEXT,
    vote_channel_id TEXT,
    vote_message_id TEXT,
    announced_at BIGINT,
    CHECK (selection_1 <> selection_2)
);
`

const sqliteSchema = `
-- Submission periods
CREATE TABLE IF NOT EXISTS period (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time INTEGER NOT NULL,
    end_time INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_period_single_open ON period ((end_time IS NULL)) WHERE end_time IS NULL;

-- Submissions
CREATE TABLE IF NOT EXISTS submission (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    period_id INTEGER NOT NULL REFERENCES period(id) ON DELETE CASCADE,
    submitter_id TEXT NOT NULL,
    title TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    UNIQUE (period_id, submitter_id)
);

CREATE INDEX IF NOT EXISTS idx_submission_period_id ON submission(period_id);

-- Rolls. Selected submissions cannot be deleted while the roll exists.
CREATE TABLE IF NOT EXISTS roll (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    period_id INTEGER NOT NULL UNIQUE REFERENCES period(id) ON DELETE CASCADE,
    selection_1 INTEGER NOT NULL REFERENCES submission(id) ON DELETE RESTRICT,
    selection_2 INTEGER NOT NULL REFERENCES submission(id) ON DELETE RESTRICT,
    selection_1_emote TEXT,
    selection_2_emote TEXT,
    vote_channel_id TEXT,
    vote_message_id TEXT,
    announced_at INTEGER,
    CHECK (selection_1 <> selection_2)
);
`
