// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	err = db.CreateSchema(conn, cfg.DatabaseType)

SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) get the same tables.
CreateSchema is safe to call on every start.

# Tables

	period 1──* submission
	period 1──1 roll
	roll   *──2 submission (selection_1, selection_2)

A partial unique index allows one open period at a time. submission is
unique per (period_id, submitter_id). A submission selected by a roll cannot
be deleted until the roll is.
*/
package db
