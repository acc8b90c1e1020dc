// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package movienight

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/movie-night/models"
	"github.com/danielhkuo/movie-night/store"
)

// Errors shared with the store so callers only need errors.Is against one value.
var (
	ErrNotFound     = store.ErrNotFound
	ErrConflict     = store.ErrConflict
	ErrInvalidState = store.ErrInvalidState
	ErrInRoll       = store.ErrInRoll
)

var (
	ErrInsufficientCandidates = errors.New("at least two submissions are needed")
	ErrDrawExhausted          = errors.New("could not draw two distinct submissions")
	ErrEmptyTitle             = errors.New("submission title is required")
	ErrVoteNotStarted         = errors.New("voting has not started for this roll")
	ErrAlreadyAnnounced       = errors.New("roll was already announced")
)

// Repository is the durable store. *store.Store implements it.
type Repository interface {
	OpenPeriod(ctx context.Context) (models.Period, error)
	MostRecentClosedPeriod(ctx context.Context) (models.Period, error)
	GetPeriod(ctx context.Context, id int64) (models.Period, error)
	ListPeriods(ctx context.Context, limit int) ([]models.Period, error)
	CreatePeriod(ctx context.Context, start time.Time) (models.Period, error)
	ClosePeriod(ctx context.Context, id int64, end time.Time) (models.Period, error)
	ReopenPeriod(ctx context.Context, id int64) (models.Period, error)

	ListSubmissions(ctx context.Context, periodID int64) ([]models.Submission, error)
	ListAllSubmissions(ctx context.Context) ([]models.Submission, error)
	GetSubmission(ctx context.Context, id int64) (models.Submission, error)
	FindSubmission(ctx context.Context, periodID int64, submitterID string) (models.Submission, error)
	CreateSubmission(ctx context.Context, sub models.Submission) (models.Submission, error)
	ReplaceSubmission(ctx context.Context, existing models.Submission, title, link string) (models.Submission, error)
	UpdateSubmissionMetadata(ctx context.Context, id int64, title, link string) error
	DeleteSubmission(ctx context.Context, id int64) error

	GetRollByPeriod(ctx context.Context, periodID int64) (models.Roll, error)
	CreateRoll(ctx context.Context, periodID, selection1, selection2 int64) (models.Roll, error)
	DeleteRoll(ctx context.Context, id int64) error
	AssignVote(ctx context.Context, rollID int64, emote1, emote2 string, ref models.MessageRef) (models.Roll, error)
	MarkAnnounced(ctx context.Context, rollID int64, at time.Time) error
}

var _ Repository = (*store.Store)(nil)
