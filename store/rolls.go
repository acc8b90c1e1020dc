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

const rollColumns = `id, period_id, selection_1, selection_2, selection_1_emote, selection_2_emote,
		       vote_channel_id, vote_message_id, announced_at`

func scanRoll(row rowScanner) (models.Roll, error) {
	var (
		r                  models.Roll
		emote1, emote2     sql.NullString
		channelID, message sql.NullString
		announced          sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.PeriodID, &r.Selection1, &r.Selection2,
		&emote1, &emote2, &channelID, &message, &announced)
	if err != nil {
		return models.Roll{}, err
	}

	r.Selection1Emote = fromNullString(emote1)
	r.Selection2Emote = fromNullString(emote2)
	if channelID.Valid && message.Valid {
		r.VoteMessage = &models.MessageRef{ChannelID: channelID.String, MessageID: message.String}
	}
	r.AnnouncedAt = fromNullUnix(announced)
	return r, nil
}

func (s *Store) queryRoll(ctx context.Context, query string, args ...any) (models.Roll, error) {
	r, err := scanRoll(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Roll{}, ErrNotFound
	}
	if err != nil {
		return models.Roll{}, fmt.Errorf("query roll: %w", err)
	}
	return r, nil
}

func (s *Store) GetRollByPeriod(ctx context.Context, periodID int64) (models.Roll, error) {
	return s.queryRoll(ctx, `SELECT `+rollColumns+` FROM roll WHERE period_id = $1`, periodID)
}

func (s *Store) GetRoll(ctx context.Context, id int64) (models.Roll, error) {
	return s.queryRoll(ctx, `SELECT `+rollColumns+` FROM roll WHERE id = $1`, id)
}

// CreateRoll inserts a roll. ErrConflict if the period already has one.
func (s *Store) CreateRoll(ctx context.Context, periodID, selection1, selection2 int64) (models.Roll, error) {
	if selection1 == selection2 {
		return models.Roll{}, fmt.Errorf("roll selections must differ: %w", ErrInvalidState)
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO roll (period_id, selection_1, selection_2)
		VALUES ($1, $2, $3)
		RETURNING id
	`, periodID, selection1, selection2).Scan(&id)
	if isUniqueViolation(err) {
		return models.Roll{}, ErrConflict
	}
	if err != nil {
		return models.Roll{}, fmt.Errorf("create roll: %w", err)
	}

	return models.Roll{ID: id, PeriodID: periodID, Selection1: selection1, Selection2: selection2}, nil
}

func (s *Store) DeleteRoll(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roll WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete roll: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete roll: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignVote records the voting emotes and the posted vote message.
func (s *Store) AssignVote(ctx context.Context, rollID int64, emote1, emote2 string, ref models.MessageRef) (models.Roll, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE roll
		SET selection_1_emote = $1, selection_2_emote = $2,
		    vote_channel_id = $3, vote_message_id = $4
		WHERE id = $5
	`, emote1, emote2, ref.ChannelID, ref.MessageID, rollID)
	if err != nil {
		return models.Roll{}, fmt.Errorf("assign vote: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Roll{}, fmt.Errorf("assign vote: %w", err)
	} else if n == 0 {
		return models.Roll{}, ErrNotFound
	}
	return s.GetRoll(ctx, rollID)
}

// MarkAnnounced stamps the roll as announced.
func (s *Store) MarkAnnounced(ctx context.Context, rollID int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE roll SET announced_at = $1 WHERE id = $2`, toUnix(at), rollID)
	if err != nil {
		return fmt.Errorf("mark announced: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("mark announced: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
