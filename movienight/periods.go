// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package movienight

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/movie-night/models"
)

// PeriodManager owns the open/close/reopen transitions. Periods are never
// created implicitly; StartPeriod is the only way in.
type PeriodManager struct {
	repo Repository
	now  func() time.Time
}

func NewPeriodManager(repo Repository) *PeriodManager {
	return &PeriodManager{repo: repo, now: time.Now}
}

func (m *PeriodManager) GetOpenPeriod(ctx context.Context) (models.Period, error) {
	return m.repo.OpenPeriod(ctx)
}

func (m *PeriodManager) GetMostRecentClosedPeriod(ctx context.Context) (models.Period, error) {
	return m.repo.MostRecentClosedPeriod(ctx)
}

func (m *PeriodManager) GetPeriod(ctx context.Context, id int64) (models.Period, error) {
	return m.repo.GetPeriod(ctx, id)
}

// ListPeriods returns the most recent periods, newest first.
func (m *PeriodManager) ListPeriods(ctx context.Context, limit int) ([]models.Period, error) {
	if limit <= 0 {
		limit = 5
	}
	return m.repo.ListPeriods(ctx, limit)
}

// StartPeriod opens a new period. ErrConflict if one is already open.
func (m *PeriodManager) StartPeriod(ctx context.Context) (models.Period, error) {
	_, err := m.repo.OpenPeriod(ctx)
	if err == nil {
		return models.Period{}, ErrConflict
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Period{}, err
	}

	// The store's open-period index catches a concurrent start
	p, err := m.repo.CreatePeriod(ctx, m.now())
	if err != nil {
		return models.Period{}, err
	}

	slog.Info("period started", "period_id", p.ID)
	return p, nil
}

// ClosePeriod ends the period now. ErrInvalidState if it is already closed.
func (m *PeriodManager) ClosePeriod(ctx context.Context, p models.Period) (models.Period, error) {
	if !p.Open() {
		return models.Period{}, ErrInvalidState
	}

	closed, err := m.repo.ClosePeriod(ctx, p.ID, m.now())
	if err != nil {
		return models.Period{}, err
	}

	slog.Info("period closed", "period_id", closed.ID)
	return closed, nil
}

// ReopenPeriod clears the end time. ErrConflict if a newer period is open.
func (m *PeriodManager) ReopenPeriod(ctx context.Context, p models.Period) (models.Period, error) {
	reopened, err := m.repo.ReopenPeriod(ctx, p.ID)
	if err != nil {
		return models.Period{}, err
	}

	slog.Info("period reopened", "period_id", reopened.ID)
	return reopened, nil
}
