// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package messaging describes the chat platform as seen by the bot.
package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielhkuo/movie-night/models"
)

// ErrTimeout is returned by AwaitResponse when nobody answered in time.
var ErrTimeout = errors.New("no response before timeout")

// Response is one reaction left on a message. Animated is set for animated
// custom emotes.
type Response struct {
	ActorID  string
	Emote    string
	Animated bool
}

// Field is a titled line in an embed-style message.
type Field struct {
	Name  string
	Value string
}

// Embed is a titled message with fields.
type Embed struct {
	Title       string
	Description string
	Fields      []Field
}

// Messenger is the chat platform. Emotes use the platform's API form
// ("✅" for unicode, "name:id" for custom emotes).
type Messenger interface {
	PostMessage(ctx context.Context, channelID, content string) (models.MessageRef, error)
	PostEmbed(ctx context.Context, channelID string, embed Embed) (models.MessageRef, error)
	// PostMessageWithEmoteOptions posts content and seeds it with the given reactions.
	PostMessageWithEmoteOptions(ctx context.Context, channelID, content string, emotes []string) (models.MessageRef, error)
	// AwaitResponse blocks until actorID reacts to ref, the timeout elapses
	// (ErrTimeout) or ctx is done. An empty actorID accepts anyone.
	AwaitResponse(ctx context.Context, ref models.MessageRef, actorID string, timeout time.Duration) (Response, error)
	EditMessage(ctx context.Context, ref models.MessageRef, content string) error
	ClearReactions(ctx context.Context, ref models.MessageRef) error
	GetReactionCounts(ctx context.Context, ref models.MessageRef) (map[string]int, error)
	DeleteMessage(ctx context.Context, ref models.MessageRef) error
	// EmoteUsable reports whether the emote can be used in the channel's server.
	EmoteUsable(ctx context.Context, channelID, emote string) (bool, error)
	// DisplayName resolves a user id to a readable name.
	DisplayName(ctx context.Context, channelID, userID string) string
	// Release stops buffering reactions on ref. Call it for posted messages
	// that nobody will await.
	Release(ref models.MessageRef)
}

// FormatEmote renders an API-form emote for use inside message text.
func FormatEmote(emote string, animated bool) string {
	if !strings.Contains(emote, ":") {
		return emote
	}
	if animated {
		return "<a:" + emote + ">"
	}
	return "<:" + emote + ">"
}
