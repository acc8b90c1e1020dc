// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package movienight

import (
	"context"
	"log/slog"
	"strings"

	"github.com/danielhkuo/movie-night/models"
)

// SubmissionStore keeps at most one submission per user per period.
// Create fails loudly on a duplicate; Replace is the only way to change one.
type SubmissionStore struct {
	repo Repository
}

func NewSubmissionStore(repo Repository) *SubmissionStore {
	return &SubmissionStore{repo: repo}
}

// ListForPeriod returns submissions in insertion order.
func (s *SubmissionStore) ListForPeriod(ctx context.Context, periodID int64) ([]models.Submission, error) {
	return s.repo.ListSubmissions(ctx, periodID)
}

func (s *SubmissionStore) ListAll(ctx context.Context) ([]models.Submission, error) {
	return s.repo.ListAllSubmissions(ctx)
}

func (s *SubmissionStore) Get(ctx context.Context, id int64) (models.Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

func (s *SubmissionStore) FindByUserInPeriod(ctx context.Context, periodID int64, submitterID string) (models.Submission, error) {
	return s.repo.FindSubmission(ctx, periodID, submitterID)
}

// Create adds a submission. ErrConflict if the user already has one in the period.
func (s *SubmissionStore) Create(ctx context.Context, periodID int64, submitterID, title, link string) (models.Submission, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Submission{}, ErrEmptyTitle
	}

	sub, err := s.repo.CreateSubmission(ctx, models.Submission{
		PeriodID:    periodID,
		SubmitterID: submitterID,
		Title:       title,
		Link:        strings.TrimSpace(link),
	})
	if err != nil {
		return models.Submission{}, err
	}

	slog.Info("submission created", "period_id", periodID, "submission_id", sub.ID, "submitter", submitterID)
	return sub, nil
}

// Replace swaps existing for a new submission atomically. Callers must have
// confirmed the replacement with the submitter first.
func (s *SubmissionStore) Replace(ctx context.Context, existing models.Submission, title, link string) (models.Submission, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Submission{}, ErrEmptyTitle
	}

	sub, err := s.repo.ReplaceSubmission(ctx, existing, title, strings.TrimSpace(link))
	if err != nil {
		return models.Submission{}, err
	}

	slog.Info("submission replaced", "period_id", sub.PeriodID, "old_id", existing.ID, "new_id", sub.ID)
	return sub, nil
}

// Normalize rewrites a submission's title and link after a metadata lookup.
func (s *SubmissionStore) Normalize(ctx context.Context, sub models.Submission, title, link string) (models.Submission, error) {
	if err := s.repo.UpdateSubmissionMetadata(ctx, sub.ID, title, link); err != nil {
		return models.Submission{}, err
	}
	sub.Title = title
	sub.Link = link
	return sub, nil
}

func (s *SubmissionStore) Delete(ctx context.Context, sub models.Submission) error {
	if err := s.repo.DeleteSubmission(ctx, sub.ID); err != nil {
		return err
	}

	slog.Info("submission deleted", "period_id", sub.PeriodID, "submission_id", sub.ID)
	return nil
}
