// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/movie-night/models"
)

const submissionColumns = `id, period_id, submitter_id, title, link, created_at`

func scanSubmission(row rowScanner) (models.Submission, error) {
	var (
		sub     models.Submission
		created int64
	)
	if err := row.Scan(&sub.ID, &sub.PeriodID, &sub.SubmitterID, &sub.Title, &sub.Link, &created); err != nil {
		return models.Submission{}, err
	}
	sub.CreatedAt = fromUnix(created)
	return sub, nil
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListSubmissions returns a period's submissions in insertion order.
func (s *Store) ListSubmissions(ctx context.Context, periodID int64) ([]models.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT `+submissionColumns+`
		FROM submission
		WHERE period_id = $1
		ORDER BY id
	`, periodID)
}

// ListAllSubmissions returns every submission across periods.
func (s *Store) ListAllSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.querySubmissions(ctx, `SELECT `+submissionColumns+` FROM submission ORDER BY id`)
}

func (s *Store) GetSubmission(ctx context.Context, id int64) (models.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submission WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Submission{}, ErrNotFound
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("query submission: %w", err)
	}
	return sub, nil
}

func (s *Store) FindSubmission(ctx context.Context, periodID int64, submitterID string) (models.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+`
		FROM submission
		WHERE period_id = $1 AND submitter_id = $2
	`, periodID, submitterID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Submission{}, ErrNotFound
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("query submission: %w", err)
	}
	return sub, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertSubmission(ctx context.Context, q rowQuerier, sub models.Submission) (models.Submission, error) {
	err := q.QueryRowContext(ctx, `
		INSERT INTO submission (period_id, submitter_id, title, link, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, sub.PeriodID, sub.SubmitterID, sub.Title, sub.Link, toUnix(sub.CreatedAt)).Scan(&sub.ID)
	if isUniqueViolation(err) {
		return models.Submission{}, ErrConflict
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	sub.CreatedAt = fromUnix(toUnix(sub.CreatedAt))
	return sub, nil
}

// CreateSubmission inserts a submission. ErrConflict if the submitter already
// has one in the period.
func (s *Store) CreateSubmission(ctx context.Context, sub models.Submission) (models.Submission, error) {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	return insertSubmission(ctx, s.db, sub)
}

// ReplaceSubmission deletes existing and inserts its replacement in one transaction.
// ErrNotFound if existing was already removed by someone else, ErrInRoll if a
// roll selected it.
func (s *Store) ReplaceSubmission(ctx context.Context, existing models.Submission, title, link string) (models.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Submission{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM submission WHERE id = $1`, existing.ID)
	if isForeignKeyViolation(err) {
		return models.Submission{}, ErrInRoll
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("delete submission: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Submission{}, fmt.Errorf("delete submission: %w", err)
	} else if n == 0 {
		return models.Submission{}, ErrNotFound
	}

	replacement, err := insertSubmission(ctx, tx, models.Submission{
		PeriodID:    existing.PeriodID,
		SubmitterID: existing.SubmitterID,
		Title:       title,
		Link:        link,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return models.Submission{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Submission{}, fmt.Errorf("commit replace: %w", err)
	}
	return replacement, nil
}

// UpdateSubmissionMetadata rewrites title and link in place. Used to normalize
// titles after a metadata lookup; the submission keeps its identity.
func (s *Store) UpdateSubmissionMetadata(ctx context.Context, id int64, title, link string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE submission SET title = $1, link = $2 WHERE id = $3
	`, title, link, id)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update submission: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubmission removes a submission. ErrInRoll if a roll selected it.
func (s *Store) DeleteSubmission(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submission WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return ErrInRoll
	}
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
