// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package messaging

import "testing"

func TestFormatEmote(t *testing.T) {
	tests := []struct {
		name     string
		emote    string
		animated bool
		expected string
	}{
		{"unicode", "🍿", false, "🍿"},
		{"custom", "popcorn:42", false, "<:popcorn:42>"},
		{"animated custom", "dance:77", true, "<a:dance:77>"},
		{"animated flag ignored for unicode", "🍿", true, "🍿"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEmote(tt.emote, tt.animated); got != tt.expected {
				t.Errorf("FormatEmote(%q, %v) = %q, expected %q", tt.emote, tt.animated, got, tt.expected)
			}
		})
	}
}
