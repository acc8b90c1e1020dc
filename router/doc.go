// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires the HTTP status API.

	mux := router.NewRouter(repo, tally, scheduler, cfg)

Endpoints:

	GET  /health
	GET  /
	GET  /periods
	GET  /periods/current
	GET  /periods/{id}/roll
	GET  /schedule
	POST /tally              - requires X-Admin-Key

Every API route is wrapped with middleware.WithLogging. main wraps the whole
mux with middleware.CORS.
*/
package router
