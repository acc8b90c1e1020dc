// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package confirm asks a single user a yes/no question through reactions.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/models"
)

// Result is how a confirmation resolved.
type Result int

const (
	Yes Result = iota
	No
	Invalid
	Timeout
)

func (r Result) String() string {
	switch r {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Invalid:
		return "invalid"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Reaction emotes offered on every prompt
const (
	YesEmote = "✅"
	NoEmote  = "❎"
)

// Request is one question. Only InitiatorID's answer counts.
type Request struct {
	InitiatorID string
	ChannelID   string
	Prompt      string
	YesLabel    string
	NoLabel     string
	Timeout     time.Duration
}

type Gate struct {
	messenger      messaging.Messenger
	defaultTimeout time.Duration
}

func NewGate(messenger messaging.Messenger, defaultTimeout time.Duration) *Gate {
	return &Gate{messenger: messenger, defaultTimeout: defaultTimeout}
}

// Ask posts the prompt and waits for the initiator's reaction. The returned
// error is only set when the messenger itself fails; a timeout is a Result.
func (g *Gate) Ask(ctx context.Context, req Request) (Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = g.defaultTimeout
	}

	ref, err := g.messenger.PostMessageWithEmoteOptions(ctx, req.ChannelID, req.Prompt, []string{YesEmote, NoEmote})
	if err != nil {
		return Invalid, fmt.Errorf("post confirmation: %w", err)
	}

	result, err := g.await(ctx, ref, req.InitiatorID, timeout)
	if err != nil {
		return Invalid, err
	}

	var content string
	switch result {
	case Yes:
		content = req.YesLabel
	case No:
		content = req.NoLabel
	case Invalid:
		content = fmt.Sprintf("%s\nPlease react with %s or %s.", req.Prompt, YesEmote, NoEmote)
	case Timeout:
		content = fmt.Sprintf("%s\nNo reaction within %s.", req.Prompt, timeout)
	}

	if err := g.messenger.EditMessage(ctx, ref, content); err != nil {
		slog.Warn("failed to edit confirmation", "message_id", ref.MessageID, "error", err)
	}
	if err := g.messenger.ClearReactions(ctx, ref); err != nil {
		slog.Warn("failed to clear confirmation reactions", "message_id", ref.MessageID, "error", err)
	}

	slog.Info("confirmation resolved", "initiator", req.InitiatorID, "result", result.String())
	return result, nil
}

// await ignores responses from anyone but the initiator until the deadline.
func (g *Gate) await(ctx context.Context, ref models.MessageRef, initiatorID string, timeout time.Duration) (Result, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Timeout, nil
		}

		resp, err := g.messenger.AwaitResponse(ctx, ref, initiatorID, remaining)
		if errors.Is(err, messaging.ErrTimeout) {
			return Timeout, nil
		}
		if err != nil {
			return Invalid, fmt.Errorf("await confirmation: %w", err)
		}

		if resp.ActorID != initiatorID {
			continue
		}

		switch resp.Emote {
		case YesEmote:
			return Yes, nil
		case NoEmote:
			return No, nil
		default:
			return Invalid, nil
		}
	}
}
