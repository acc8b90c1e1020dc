// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"slices"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// ValidateAdminKey compares the provided key with the configured one in
// constant time. An empty configured key never validates.
func ValidateAdminKey(provided, expected string) error {
	if expected == "" {
		return ErrInvalidAdminKey
	}
	// Hash first so the comparison does not leak the key length
	p := sha256.Sum256([]byte(provided))
	e := sha256.Sum256([]byte(expected))
	if !hmac.Equal(p[:], e[:]) {
		return ErrInvalidAdminKey
	}
	return nil
}

// Moderators lists who may run moderator commands: individual users by id
// or anyone holding one of the roles.
type Moderators struct {
	Users []string
	Roles []string
}

// IsModerator reports whether the user or any of their roles is listed
func (m Moderators) IsModerator(userID string, roles []string) bool {
	if slices.Contains(m.Users, userID) {
		return true
	}
	for _, role := range roles {
		if slices.Contains(m.Roles, role) {
			return true
		}
	}
	return false
}
