// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the read-mostly HTTP status API.

PeriodHandler serves period history, the open period's submissions and the
roll drawn for a period. TallyHandler reports when the scheduler fires next
and lets an admin force a tally:

	GET  /periods            - newest periods with their rolls
	GET  /periods/current    - open period and its submissions
	GET  /periods/{id}/roll  - roll with both selections
	GET  /schedule           - next scheduled tally
	POST /tally              - announce the current vote now (X-Admin-Key)

Errors use models.ErrorResponse. Store-level NotFound maps to 404.
*/
package handlers
