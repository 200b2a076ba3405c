// Package messages holds the text-chat conversation model shared by
// the chat screens: an append-only thread of user and assistant
// messages with stable increasing IDs.
package messages

import (
	"context"
	"sync"

	"github.com/sara-assist/go-sara/pkg/assistant"
)

// Message is one chat utterance.
type Message struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
	Text string `json:"text"`
}

// Thread is an append-only conversation history. Safe for concurrent
// use.
type Thread struct {
	mu     sync.Mutex
	nextID int
	items  []Message
}

// NewThread creates an empty thread.
func NewThread() *Thread {
	return &Thread{nextID: 1}
}

// Append adds a message with the next ID and returns it.
func (t *Thread) Append(role, text string) Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := Message{ID: t.nextID, Role: role, Text: text}
	t.nextID++
	t.items = append(t.items, msg)
	return msg
}

// Len reports the number of messages.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Messages returns the thread in creation order, oldest first.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.items))
	copy(out, t.items)
	return out
}

// Newest returns the thread most-recent-first, the display order of
// the chat screens.
func (t *Thread) Newest() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.items))
	for i, m := range t.items {
		out[len(t.items)-1-i] = m
	}
	return out
}

// Exchange appends the user text, asks the completer for a reply, and
// appends that too. On failure the user message stays on the thread
// and the error is returned.
func (t *Thread) Exchange(ctx context.Context, completer assistant.Completer, userText string) (Message, error) {
	t.Append(assistant.RoleUser, userText)
	reply, err := completer.Complete(ctx, userText)
	if err != nil {
		return Message{}, err
	}
	return t.Append(assistant.RoleAssistant, reply), nil
}
