// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/movie-night/models"
)

// Open connects to the configured database and verifies the connection.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch databaseType {
	case models.DatabasePostgres:
		conn, err = sql.Open("postgres", databaseURL)
	case models.DatabaseSQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(databaseURL))
		if err == nil {
			// SQLite allows a single writer; one connection keeps writes serialized
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// sqliteDSN turns on foreign keys and a busy timeout unless the URL already sets pragmas.
func sqliteDSN(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	if strings.Contains(url, "_pragma=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
