// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielhkuo/movie-night/models"
)

func TestSchemaFor(t *testing.T) {
	tests := []struct {
		databaseType string
		wantErr      bool
	}{
		{models.DatabaseSQLite, false},
		{models.DatabasePostgres, false},
		{"mysql", true},
	}

	for _, tt := range tests {
		t.Run(tt.databaseType, func(t *testing.T) {
			schema, err := SchemaFor(tt.databaseType)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, table := range []string{"period", "submission", "roll"} {
				if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
					t.Errorf("schema missing table %s", table)
				}
			}
		})
	}
}

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"movies.db", "movies.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"sqlite://movies.db", "movies.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:movies.db?mode=rwc", "file:movies.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"movies.db?_pragma=journal_mode(WAL)", "movies.db?_pragma=journal_mode(WAL)"},
	}

	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateSchemaTwice(t *testing.T) {
	conn, err := Open(models.DatabaseSQLite, "file:"+filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn, models.DatabaseSQLite); err != nil {
			t.Fatalf("CreateSchema run %d failed: %v", i+1, err)
		}
	}

	var fk int
	if err := conn.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA failed: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign keys on, got %d", fk)
	}
}

func TestOpenUnsupported(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected an error for an unsupported database type")
	}
}
