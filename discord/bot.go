// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package discord connects the bot to Discord: it implements the messaging
// interface over a discordgo session and turns incoming messages into commands.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/danielhkuo/movie-night/commands"
)

// CommandHandler runs one chat command.
type CommandHandler interface {
	Handle(ctx context.Context, msg commands.Message)
}

// NewSession creates a bot session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent
	return s, nil
}

// Bot routes Discord events. Each command runs in its own goroutine so a
// confirmation wait never blocks other users.
type Bot struct {
	session   *discordgo.Session
	messenger *Messenger
	handler   CommandHandler

	ctx      context.Context
	inFlight sync.WaitGroup
	removers []func()
}

func NewBot(session *discordgo.Session, messenger *Messenger, handler CommandHandler) *Bot {
	return &Bot{session: session, messenger: messenger, handler: handler}
}

// Start registers handlers and opens the gateway connection. Commands are
// run with ctx.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.removers = append(b.removers,
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.messenger.OnReactionAdd),
		b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
			slog.Info("discord ready", "user", r.User.Username, "guilds", len(r.Guilds))
		}),
	)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}
	return nil
}

// Close waits for running commands and closes the connection.
func (b *Bot) Close() error {
	for _, remove := range b.removers {
		remove()
	}
	b.inFlight.Wait()
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	msg := toCommand(m)
	b.inFlight.Add(1)
	go func() {
		defer b.inFlight.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("command panicked", "author", msg.AuthorID, "panic", r)
			}
		}()
		b.handler.Handle(b.ctx, msg)
	}()
}

func toCommand(m *discordgo.MessageCreate) commands.Message {
	msg := commands.Message{
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
	}
	if m.Member != nil {
		msg.AuthorRoles = m.Member.Roles
	}
	for _, u := range m.Mentions {
		if u != nil && !u.Bot {
			msg.Mentions = append(msg.Mentions, u.ID)
		}
	}
	return msg
}
