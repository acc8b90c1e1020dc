// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/movie-night/auth"
	"github.com/danielhkuo/movie-night/cliparse"
	"github.com/danielhkuo/movie-night/confirm"
	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/movienight"
)

// Message is an inbound chat message, already stripped of platform types.
type Message struct {
	ChannelID   string
	GuildID     string
	AuthorID    string
	AuthorRoles []string
	Content     string
	// User ids mentioned in the message
	Mentions []string
}

// Normalizer turns an IMDb link in free text into a title and canonical link.
type Normalizer interface {
	Normalize(ctx context.Context, text string) (title, link string, err error)
}

// Handler runs chat commands against the movie night core.
type Handler struct {
	prefix       string
	emoteTimeout time.Duration
	votingWindow time.Duration

	periods    *movienight.PeriodManager
	subs       *movienight.SubmissionStore
	rolls      *movienight.RollEngine
	tally      *movienight.TallyService
	gate       *confirm.Gate
	messenger  messaging.Messenger
	normalizer Normalizer
	mods       auth.Moderators

	now func() time.Time
}

// NewHandler wires the handler. normalizer may be nil when no metadata
// lookup is configured.
func NewHandler(cfg cliparse.Config, repo movienight.Repository, messenger messaging.Messenger, tally *movienight.TallyService, normalizer Normalizer) *Handler {
	return &Handler{
		prefix:       cfg.CommandPrefix,
		emoteTimeout: cfg.EmoteTimeout,
		votingWindow: cfg.VotingWindow,
		periods:      movienight.NewPeriodManager(repo),
		subs:         movienight.NewSubmissionStore(repo),
		rolls:        movienight.NewRollEngine(repo, nil),
		tally:        tally,
		gate:         confirm.NewGate(messenger, cfg.ConfirmTimeout),
		messenger:    messenger,
		normalizer:   normalizer,
		mods:         auth.Moderators{Users: cfg.Moderators, Roles: cfg.ModeratorRoles},
		now:          time.Now,
	}
}

// call is one command invocation.
type call struct {
	msg  Message
	args string
	log  *slog.Logger
}

type command struct {
	run       func(h *Handler, ctx context.Context, c call) error
	moderator bool
	help      string
}

var registry map[string]command

// Filled in init since help reads the registry.
func init() {
	registry = map[string]command{
		"submit":       {run: (*Handler).submit, help: "submit a movie (the default command)"},
		"getsubs":      {run: (*Handler).getSubs, help: "list this period's submissions"},
		"deletesub":    {run: (*Handler).deleteSub, help: "delete your submission, or @mentioned users' (moderators)"},
		"roll":         {run: (*Handler).roll, help: "close the period and draw two movies to vote on"},
		"startperiod":  {run: (*Handler).startPeriod, help: "open a new submission period"},
		"endperiod":    {run: (*Handler).endPeriod, help: "close the period without rolling"},
		"reopenperiod": {run: (*Handler).reopenPeriod, help: "reopen the last closed period"},
		"listperiods":  {run: (*Handler).listPeriods, help: "show recent periods and their rolls"},
		"fixdb":        {run: (*Handler).fixDB, moderator: true, help: "resolve IMDb links in all submissions"},
		"tally":        {run: (*Handler).runTally, moderator: true, help: "count the current vote and announce it now"},
		"help":         {run: (*Handler).help, help: "show this message"},
	}
}

// Parse splits content into a command name and its arguments. Text after the
// prefix that is not a known command is a submission.
func Parse(prefix, content string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := content[len(prefix):]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && !unicode.IsSpace(r) {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)

	word, tail := rest, ""
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		word, tail = rest[:i], rest[i:]
	}
	if _, known := registry[strings.ToLower(word)]; known {
		return strings.ToLower(word), strings.TrimSpace(tail), true
	}
	return "submit", rest, true
}

// Handle runs the command in msg, if it is one. Failures are logged and
// reported in the channel.
func (h *Handler) Handle(ctx context.Context, msg Message) {
	name, args, ok := Parse(h.prefix, msg.Content)
	if !ok {
		return
	}
	cmd := registry[name]

	c := call{
		msg:  msg,
		args: args,
		log: slog.With("command_id", uuid.NewString(), "command", name,
			"author", msg.AuthorID, "channel", msg.ChannelID),
	}
	c.log.Info("command received")

	if cmd.moderator && !h.mods.IsModerator(msg.AuthorID, msg.AuthorRoles) {
		c.log.Warn("moderator command denied")
		h.say(ctx, c, "Only moderators can do that.")
		return
	}

	if err := cmd.run(h, ctx, c); err != nil {
		c.log.Error("command failed", "error", err)
		h.say(ctx, c, "Something went wrong running that command.")
		return
	}
	c.log.Info("command complete")
}

func (h *Handler) say(ctx context.Context, c call, content string) {
	if _, err := h.messenger.PostMessage(ctx, c.msg.ChannelID, content); err != nil {
		c.log.Error("failed to send message", "error", err)
	}
}

// ask wraps the confirmation gate for the command's author.
func (h *Handler) ask(ctx context.Context, c call, prompt, yes, no string) (confirm.Result, error) {
	return h.gate.Ask(ctx, confirm.Request{
		InitiatorID: c.msg.AuthorID,
		ChannelID:   c.msg.ChannelID,
		Prompt:      prompt,
		YesLabel:    yes,
		NoLabel:     no,
	})
}

func (h *Handler) help(ctx context.Context, c call) error {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Usage: `%s <movie>` or `%s <command>`\n", h.prefix, h.prefix)
	for _, name := range names {
		fmt.Fprintf(&b, "`%s` %s\n", name, registry[name].help)
	}
	h.say(ctx, c, strings.TrimRight(b.String(), "\n"))
	return nil
}

// isNotFound reports the lookups that end a command with a notice rather
// than an error.
func isNotFound(err error) bool {
	return errors.Is(err, movienight.ErrNotFound)
}
