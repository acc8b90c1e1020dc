// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse loads configuration from .env, the environment and flags.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are read in that order, each overriding the last. ParseFlags fails
when the database URL, Discord token, movie channel or admin key is missing,
or when the database type is neither sqlite nor postgres.
*/
package cliparse
