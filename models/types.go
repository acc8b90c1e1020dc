// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Domain types

// Period is one submission window. EndTime is nil while the period is open.
type Period struct {
	ID        int64      `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Open reports whether the period still accepts submissions.
func (p Period) Open() bool {
	return p.EndTime == nil
}

type Submission struct {
	ID          int64     `json:"id"`
	PeriodID    int64     `json:"period_id"`
	SubmitterID string    `json:"submitter_id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
}

// Roll is the pair of submissions drawn for a period's vote.
// Emotes and VoteMessage are set once voting starts.
type Roll struct {
	ID              int64       `json:"id"`
	PeriodID        int64       `json:"period_id"`
	Selection1      int64       `json:"selection_1"`
	Selection2      int64       `json:"selection_2"`
	Selection1Emote *string     `json:"selection_1_emote,omitempty"`
	Selection2Emote *string     `json:"selection_2_emote,omitempty"`
	VoteMessage     *MessageRef `json:"vote_message,omitempty"`
	AnnouncedAt     *time.Time  `json:"announced_at,omitempty"`
}

// VotingStarted reports whether emotes and the vote message have been assigned.
func (r Roll) VotingStarted() bool {
	return r.Selection1Emote != nil && r.Selection2Emote != nil && r.VoteMessage != nil
}

// MessageRef points at a message on the chat platform.
type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// VoteResult is the outcome of a tally. WinnerID is nil on a tie.
type VoteResult struct {
	PeriodID        int64  `json:"period_id"`
	RollID          int64  `json:"roll_id"`
	WinnerID        *int64 `json:"winner_submission_id,omitempty"`
	Tie             bool   `json:"tie"`
	Selection1Votes int    `json:"selection_1_votes"`
	Selection2Votes int    `json:"selection_2_votes"`
	Announcement    string `json:"announcement"`
}

// Response types

type PeriodSummary struct {
	Period    Period    `json:"period"`
	Roll      *RollView `json:"roll,omitempty"`
	StartedAt string    `json:"started"`
}

type RollView struct {
	Roll       Roll       `json:"roll"`
	Selection1 Submission `json:"selection_1_submission"`
	Selection2 Submission `json:"selection_2_submission"`
}

type CurrentPeriodResponse struct {
	Period      Period       `json:"period"`
	Submissions []Submission `json:"submissions"`
}

type ScheduleResponse struct {
	NextTally time.Time `json:"next_tally"`
	Wait      string    `json:"wait"`
	Relative  string    `json:"relative"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
