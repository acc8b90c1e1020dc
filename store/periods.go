// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/movie-night/models"
)

const periodColumns = `id, start_time, end_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriod(row rowScanner) (models.Period, error) {
	var (
		p     models.Period
		start int64
		end   sql.NullInt64
	)
	if err := row.Scan(&p.ID, &start, &end); err != nil {
		return models.Period{}, err
	}
	p.StartTime = fromUnix(start)
	p.EndTime = fromNullUnix(end)
	return p, nil
}

func (s *Store) queryPeriod(ctx context.Context, query string, args ...any) (models.Period, error) {
	p, err := scanPeriod(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Period{}, ErrNotFound
	}
	if err != nil {
		return models.Period{}, fmt.Errorf("query period: %w", err)
	}
	return p, nil
}

// OpenPeriod returns the period that has no end time.
func (s *Store) OpenPeriod(ctx context.Context) (models.Period, error) {
	return s.queryPeriod(ctx, `
		SELECT `+periodColumns+`
		FROM period
		WHERE end_time IS NULL
		ORDER BY id DESC
		LIMIT 1
	`)
}

// MostRecentClosedPeriod returns the closed period with the latest end time.
func (s *Store) MostRecentClosedPeriod(ctx context.Context) (models.Period, error) {
	return s.queryPeriod(ctx, `
		SELECT `+periodColumns+`
		FROM period
		WHERE end_time IS NOT NULL
		ORDER BY end_time DESC, id DESC
		LIMIT 1
	`)
}

func (s *Store) GetPeriod(ctx context.Context, id int64) (models.Period, error) {
	return s.queryPeriod(ctx, `SELECT `+periodColumns+` FROM period WHERE id = $1`, id)
}

// ListPeriods returns up to limit periods, newest first.
func (s *Store) ListPeriods(ctx context.Context, limit int) ([]models.Period, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+periodColumns+`
		FROM period
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	periods := []models.Period{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// CreatePeriod opens a new period. ErrConflict if one is already open.
func (s *Store) CreatePeriod(ctx context.Context, start time.Time) (models.Period, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO period (start_time)
		VALUES ($1)
		RETURNING id
	`, toUnix(start)).Scan(&id)
	if isUniqueViolation(err) {
		return models.Period{}, ErrConflict
	}
	if err != nil {
		return models.Period{}, fmt.Errorf("create period: %w", err)
	}
	return models.Period{ID: id, StartTime: fromUnix(toUnix(start))}, nil
}

// ClosePeriod sets the end time. ErrInvalidState if the period is already closed.
func (s *Store) ClosePeriod(ctx context.Context, id int64, end time.Time) (models.Period, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE period
		SET end_time = $1
		WHERE id = $2 AND end_time IS NULL
	`, toUnix(end), id)
	if err != nil {
		return models.Period{}, fmt.Errorf("close period: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Period{}, fmt.Errorf("close period: %w", err)
	}
	if n == 0 {
		if _, err := s.GetPeriod(ctx, id); err != nil {
			return models.Period{}, err
		}
		return models.Period{}, ErrInvalidState
	}

	return s.GetPeriod(ctx, id)
}

// ReopenPeriod clears the end time. ErrConflict if a newer period is open,
// ErrInvalidState if the period is not closed.
func (s *Store) ReopenPeriod(ctx context.Context, id int64) (models.Period, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Period{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPeriod(tx.QueryRowContext(ctx, `SELECT `+periodColumns+` FROM period WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Period{}, ErrNotFound
	}
	if err != nil {
		return models.Period{}, fmt.Errorf("query period: %w", err)
	}
	if p.Open() {
		return models.Period{}, ErrInvalidState
	}

	var newerOpen bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM period
			WHERE end_time IS NULL AND id > $1
		)
	`, id).Scan(&newerOpen)
	if err != nil {
		return models.Period{}, fmt.Errorf("check newer period: %w", err)
	}
	if newerOpen {
		return models.Period{}, ErrConflict
	}

	_, err = tx.ExecContext(ctx, `UPDATE period SET end_time = NULL WHERE id = $1`, id)
	if isUniqueViolation(err) {
		// An older period is still open
		return models.Period{}, ErrConflict
	}
	if err != nil {
		return models.Period{}, fmt.Errorf("reopen period: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Period{}, fmt.Errorf("commit reopen: %w", err)
	}

	p.EndTime = nil
	return p, nil
}
