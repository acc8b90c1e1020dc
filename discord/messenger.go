// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/models"
)

// maxTracked bounds how many messages keep a reaction buffer.
const maxTracked = 64

// Messenger implements messaging.Messenger on a discordgo session. Reactions
// on messages it posted are buffered so a waiter that subscribes a moment
// after posting still sees them.
type Messenger struct {
	session *discordgo.Session

	mu      sync.Mutex
	tracked map[string]chan messaging.Response
	order   []string
}

func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{
		session: session,
		tracked: map[string]chan messaging.Response{},
	}
}

func (m *Messenger) track(messageID string) chan messaging.Response {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.tracked[messageID]; ok {
		return ch
	}
	ch := make(chan messaging.Response, 16)
	m.tracked[messageID] = ch
	m.order = append(m.order, messageID)

	for len(m.order) > maxTracked {
		delete(m.tracked, m.order[0])
		m.order = m.order[1:]
	}
	return ch
}

func (m *Messenger) untrack(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tracked, messageID)
	for i, id := range m.order {
		if id == messageID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// OnReactionAdd feeds reactions to waiters. Register it with session.AddHandler.
func (m *Messenger) OnReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	m.mu.Lock()
	ch, ok := m.tracked[r.MessageID]
	m.mu.Unlock()
	if !ok {
		return
	}

	resp := messaging.Response{ActorID: r.UserID, Emote: r.Emoji.APIName(), Animated: r.Emoji.Animated}
	select {
	case ch <- resp:
	default:
		slog.Warn("reaction buffer full, dropping", "message_id", r.MessageID, "user", r.UserID)
	}
}

func ref(msg *discordgo.Message) models.MessageRef {
	return models.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}
}

func (m *Messenger) PostMessage(ctx context.Context, channelID, content string) (models.MessageRef, error) {
	msg, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return ref(msg), nil
}

func (m *Messenger) PostEmbed(ctx context.Context, channelID string, embed messaging.Embed) (models.MessageRef, error) {
	out := &discordgo.MessageEmbed{Title: embed.Title, Description: embed.Description}
	for _, f := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}

	msg, err := m.session.ChannelMessageSendEmbed(channelID, out, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("send embed: %w", err)
	}
	m.track(msg.ID)
	return ref(msg), nil
}

func (m *Messenger) PostMessageWithEmoteOptions(ctx context.Context, channelID, content string, emotes []string) (models.MessageRef, error) {
	msg, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return models.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	m.track(msg.ID)

	for _, emote := range emotes {
		if err := m.session.MessageReactionAdd(channelID, msg.ID, emote, discordgo.WithContext(ctx)); err != nil {
			return ref(msg), fmt.Errorf("add reaction %s: %w", emote, err)
		}
	}
	return ref(msg), nil
}

func (m *Messenger) AwaitResponse(ctx context.Context, r models.MessageRef, actorID string, timeout time.Duration) (messaging.Response, error) {
	ch := m.track(r.MessageID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case resp := <-ch:
			if actorID != "" && resp.ActorID != actorID {
				continue
			}
			return resp, nil
		case <-timer.C:
			return messaging.Response{}, messaging.ErrTimeout
		case <-ctx.Done():
			return messaging.Response{}, ctx.Err()
		}
	}
}

func (m *Messenger) EditMessage(ctx context.Context, r models.MessageRef, content string) error {
	if _, err := m.session.ChannelMessageEdit(r.ChannelID, r.MessageID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (m *Messenger) ClearReactions(ctx context.Context, r models.MessageRef) error {
	m.untrack(r.MessageID)
	if err := m.session.MessageReactionsRemoveAll(r.ChannelID, r.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("clear reactions: %w", err)
	}
	return nil
}

// GetReactionCounts counts reactions by emote, leaving out the bot's own
// seed reaction.
func (m *Messenger) GetReactionCounts(ctx context.Context, r models.MessageRef) (map[string]int, error) {
	msg, err := m.session.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch vote message: %w", err)
	}
	return countReactions(msg.Reactions), nil
}

func countReactions(reactions []*discordgo.MessageReactions) map[string]int {
	counts := map[string]int{}
	for _, reaction := range reactions {
		if reaction == nil || reaction.Emoji == nil {
			continue
		}
		n := reaction.Count
		if reaction.Me {
			n--
		}
		counts[reaction.Emoji.APIName()] = n
	}
	return counts
}

func (m *Messenger) Release(r models.MessageRef) {
	m.untrack(r.MessageID)
}

func (m *Messenger) DeleteMessage(ctx context.Context, r models.MessageRef) error {
	m.untrack(r.MessageID)
	if err := m.session.ChannelMessageDelete(r.ChannelID, r.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (m *Messenger) guildID(ctx context.Context, channelID string) (string, error) {
	if ch, err := m.session.State.Channel(channelID); err == nil {
		return ch.GuildID, nil
	}
	ch, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("lookup channel: %w", err)
	}
	return ch.GuildID, nil
}

// EmoteUsable accepts unicode emotes and custom emotes that belong to the
// channel's server.
func (m *Messenger) EmoteUsable(ctx context.Context, channelID, emote string) (bool, error) {
	_, emojiID, custom := strings.Cut(emote, ":")
	if !custom {
		return true, nil
	}

	guildID, err := m.guildID(ctx, channelID)
	if err != nil {
		return false, err
	}
	if guildID == "" {
		return false, nil
	}

	if _, err := m.session.GuildEmoji(guildID, emojiID, discordgo.WithContext(ctx)); err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil &&
			(restErr.Response.StatusCode == http.StatusNotFound || restErr.Response.StatusCode == http.StatusBadRequest) {
			return false, nil
		}
		return false, fmt.Errorf("lookup emoji: %w", err)
	}
	return true, nil
}

// DisplayName prefers the server nickname, then the global name, then the username.
func (m *Messenger) DisplayName(ctx context.Context, channelID, userID string) string {
	guildID, err := m.guildID(ctx, channelID)
	if err == nil && guildID != "" {
		member, err := m.session.State.Member(guildID, userID)
		if err != nil {
			member, err = m.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		}
		if err == nil && member != nil {
			if member.Nick != "" {
				return member.Nick
			}
			if member.User != nil {
				return userName(member.User)
			}
		}
	}

	user, err := m.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		slog.Debug("could not resolve user", "user", userID, "error", err)
		return userID
	}
	return userName(user)
}

func userName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

var _ messaging.Messenger = (*Messenger)(nil)
