// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main runs the movie-night Discord bot and its status API.

Members submit movies during a submission period. A moderator closes the
period with the roll command, which draws two submissions and opens an
emoji vote in the movie channel. Every week at the configured anchor the
scheduler counts the votes and announces the winner.

# Starting the Bot

	DISCORD_TOKEN=... MOVIE_CHANNEL=... ADMIN_KEY=... \
	DATABASE_URL=movienight.db go run .

Or against Postgres:

	go run . -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DISCORD_TOKEN: bot token
  - MOVIE_CHANNEL (-channel): channel for votes and announcements
  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_KEY (-admin-key): key for POST /tally

Optional settings:

  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - PORT (-p): status API port (default: 3318)
  - COMMAND_PREFIX (-prefix): chat prefix (default: !m)
  - MODERATORS, MODERATOR_ROLES: comma separated user and role IDs
  - ANCHOR_DAY, ANCHOR_TIME, ANCHOR_TZ: weekly tally (default: friday 20:00 America/New_York)
  - OMDB_API_KEY: resolves IMDb links to "Title (Year)"
  - LOG_LEVEL (-log-level): debug, info, warn or error

A .env file in the working directory is loaded first.

# Architecture

  - movienight: periods, submissions, rolls and the tally
  - store: SQL repository behind movienight.Repository
  - commands: chat command dispatch
  - discord: discordgo adapter for messaging.Messenger
  - scheduler: weekly tally loop
  - handlers, router, middleware: HTTP status API
  - omdb: movie metadata lookup
*/
package main
