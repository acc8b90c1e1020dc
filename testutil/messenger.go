// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/danielhkuo/movie-night/messaging"
	"github.com/danielhkuo/movie-night/models"
)

// FakeMessage is a message as recorded by FakeMessenger
type FakeMessage struct {
	Ref      models.MessageRef
	Content  string
	Embed    *messaging.Embed
	Emotes   []string
	Edits    []string
	Cleared  bool
	Deleted  bool
	Released bool
}

// Responder returns the reactions to deliver for a freshly posted message
type Responder func(msg FakeMessage) []messaging.Response

// FakeMessenger is an in-memory messaging.Messenger. It does not filter
// responses by actor; every queued response is delivered.
type FakeMessenger struct {
	mu        sync.Mutex
	nextID    int
	messages  map[string]*FakeMessage
	order     []string
	responses map[string]chan messaging.Response
	counts    map[string]map[string]int
	responder Responder

	// Emotes reported as unusable by EmoteUsable
	Unusable map[string]bool
	// Display names by user id
	Names map[string]string
	// Returned by GetReactionCounts when set
	CountsErr error
}

func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{
		messages:  map[string]*FakeMessage{},
		responses: map[string]chan messaging.Response{},
		counts:    map[string]map[string]int{},
		Unusable:  map[string]bool{},
		Names:     map[string]string{},
	}
}

// OnPost installs a responder called for every posted message
func (f *FakeMessenger) OnPost(r Responder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responder = r
}

// React delivers a reaction to a posted message
func (f *FakeMessenger) React(ref models.MessageRef, actorID, emote string) {
	f.mu.Lock()
	ch := f.responseChan(ref.MessageID)
	f.mu.Unlock()
	ch <- messaging.Response{ActorID: actorID, Emote: emote}
}

// SetReactionCounts sets what GetReactionCounts returns for a message
func (f *FakeMessenger) SetReactionCounts(ref models.MessageRef, counts map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[ref.MessageID] = counts
}

// Messages returns copies of all posted messages in posting order
func (f *FakeMessenger) Messages() []FakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FakeMessage, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.messages[id])
	}
	return out
}

// Message returns a copy of one posted message
func (f *FakeMessenger) Message(ref models.MessageRef) (FakeMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[ref.MessageID]
	if !ok {
		return FakeMessage{}, false
	}
	return *m, true
}

// LastMessage returns the most recently posted message
func (f *FakeMessenger) LastMessage() FakeMessage {
	msgs := f.Messages()
	if len(msgs) == 0 {
		return FakeMessage{}
	}
	return msgs[len(msgs)-1]
}

func (f *FakeMessenger) responseChan(messageID string) chan messaging.Response {
	ch, ok := f.responses[messageID]
	if !ok {
		ch = make(chan messaging.Response, 16)
		f.responses[messageID] = ch
	}
	return ch
}

func (f *FakeMessenger) post(channelID, content string, embed *messaging.Embed, emotes []string) models.MessageRef {
	f.mu.Lock()
	f.nextID++
	ref := models.MessageRef{ChannelID: channelID, MessageID: "msg-" + strconv.Itoa(f.nextID)}
	msg := &FakeMessage{Ref: ref, Content: content, Embed: embed, Emotes: emotes}
	f.messages[ref.MessageID] = msg
	f.order = append(f.order, ref.MessageID)
	ch := f.responseChan(ref.MessageID)
	responder := f.responder
	snapshot := *msg
	f.mu.Unlock()

	if responder != nil {
		for _, resp := range responder(snapshot) {
			ch <- resp
		}
	}
	return ref
}

func (f *FakeMessenger) PostMessage(ctx context.Context, channelID, content string) (models.MessageRef, error) {
	return f.post(channelID, content, nil, nil), nil
}

func (f *FakeMessenger) PostEmbed(ctx context.Context, channelID string, embed messaging.Embed) (models.MessageRef, error) {
	return f.post(channelID, embed.Title, &embed, nil), nil
}

func (f *FakeMessenger) PostMessageWithEmoteOptions(ctx context.Context, channelID, content string, emotes []string) (models.MessageRef, error) {
	return f.post(channelID, content, nil, emotes), nil
}

func (f *FakeMessenger) AwaitResponse(ctx context.Context, ref models.MessageRef, actorID string, timeout time.Duration) (messaging.Response, error) {
	f.mu.Lock()
	ch := f.responseChan(ref.MessageID)
	f.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return resp, nil
	case <-timer.C:
		return messaging.Response{}, messaging.ErrTimeout
	case <-ctx.Done():
		return messaging.Response{}, ctx.Err()
	}
}

func (f *FakeMessenger) EditMessage(ctx context.Context, ref models.MessageRef, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[ref.MessageID]
	if !ok {
		return errors.New("unknown message")
	}
	m.Content = content
	m.Edits = append(m.Edits, content)
	return nil
}

func (f *FakeMessenger) ClearReactions(ctx context.Context, ref models.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[ref.MessageID]; ok {
		m.Cleared = true
	}
	return nil
}

func (f *FakeMessenger) GetReactionCounts(ctx context.Context, ref models.MessageRef) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CountsErr != nil {
		return nil, f.CountsErr
	}
	out := map[string]int{}
	for k, v := range f.counts[ref.MessageID] {
		out[k] = v
	}
	return out, nil
}

func (f *FakeMessenger) DeleteMessage(ctx context.Context, ref models.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[ref.MessageID]; ok {
		m.Deleted = true
	}
	return nil
}

func (f *FakeMessenger) Release(ref models.MessageRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[ref.MessageID]; ok {
		m.Released = true
	}
}

func (f *FakeMessenger) EmoteUsable(ctx context.Context, channelID, emote string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Unusable[emote], nil
}

func (f *FakeMessenger) DisplayName(ctx context.Context, channelID, userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name, ok := f.Names[userID]; ok {
		return name
	}
	return userID
}

var _ messaging.Messenger = (*FakeMessenger)(nil)
