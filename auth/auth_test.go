// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
)

func TestValidateAdminKey(t *testing.T) {
	tests := []struct {
		name     string
		provided string
		expected string
		wantErr  bool
	}{
		{"matching key", "secret-key", "secret-key", false},
		{"wrong key", "other-key", "secret-key", true},
		{"empty provided", "", "secret-key", true},
		{"prefix only", "secret", "secret-key", true},
		{"nothing configured", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.provided, tt.expected)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAdminKey) {
					t.Errorf("ValidateAdminKey() error = %v, want ErrInvalidAdminKey", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateAdminKey() unexpected error = %v", err)
			}
		})
	}
}

func TestIsModerator(t *testing.T) {
	mods := Moderators{Users: []string{"111"}, Roles: []string{"mod-role"}}

	tests := []struct {
		name   string
		userID string
		roles  []string
		want   bool
	}{
		{"listed user", "111", nil, true},
		{"user with moderator role", "222", []string{"member", "mod-role"}, true},
		{"regular user", "333", []string{"member"}, false},
		{"no roles", "444", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mods.IsModerator(tt.userID, tt.roles); got != tt.want {
				t.Errorf("IsModerator(%q, %v) = %v, want %v", tt.userID, tt.roles, got, tt.want)
			}
		})
	}

	if (Moderators{}).IsModerator("111", []string{"mod-role"}) {
		t.Error("empty moderator list should deny everyone")
	}
}
