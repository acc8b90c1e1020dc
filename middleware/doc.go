// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /periods", middleware.WithLogging(handler))

Logs method, path, client IP, status and duration_ms once the handler returns.

# Admin Key

	mux.HandleFunc("POST /tally", middleware.WithLogging(
		middleware.RequireAdminKey(cfg.AdminKey, tallyHandler.Tally)))

Requests without a matching X-Admin-Key header get 401.

# CORS

	server := http.Server{Handler: middleware.CORS(mux)}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "message")
*/
package middleware
