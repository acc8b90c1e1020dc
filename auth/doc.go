// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth decides who may do privileged things.

# Admin Key

The HTTP API's write endpoints take the configured admin key in the
X-Admin-Key header:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

Both sides are hashed before the constant-time comparison, so neither the
key nor its length leaks through timing. An unset key locks the endpoints.

# Moderators

Chat commands that act on other people's data (deletesub, fixdb, tally) need
a moderator. A moderator is either listed by user id or holds a listed role:

	mods := auth.Moderators{Users: cfg.Moderators, Roles: cfg.ModeratorRoles}
	if !mods.IsModerator(authorID, authorRoles) { ... }
*/
package auth
