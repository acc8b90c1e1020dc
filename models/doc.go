// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain records and the status API's JSON types.

# Domain Types

  - Period: a submission window; open while EndTime is nil
  - Submission: one movie per member per period
  - Roll: the two submissions drawn for a closed period, their vote emotes
    and the vote message
  - MessageRef: a chat message addressed by channel and message id
  - VoteResult: the outcome of a tally

# Response Types

  - PeriodSummary: period with its roll, for GET /periods
  - RollView: roll with both submissions resolved
  - CurrentPeriodResponse: open period and its submissions
  - ScheduleResponse: next scheduled tally
  - ErrorResponse: error, message
*/
package models
