package messages

import (
	"context"
	"errors"
	"testing"

	"github.com/sara-assist/go-sara/pkg/assistant"
)

func TestThreadAppendAssignsIncreasingIDs(t *testing.T) {
	th := NewThread()
	first := th.Append(assistant.RoleUser, "السلام عليكم")
	second := th.Append(assistant.RoleAssistant, "وعليكم السلام")

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if th.Len() != 2 {
		t.Errorf("expected 2 messages, got %d", th.Len())
	}
}

func TestThreadNewestIsMostRecentFirst(t *testing.T) {
	th := NewThread()
	th.Append(assistant.RoleUser, "a")
	th.Append(assistant.RoleAssistant, "b")
	th.Append(assistant.RoleUser, "c")

	newest := th.Newest()
	if len(newest) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(newest))
	}
	if newest[0].Text != "c" || newest[2].Text != "a" {
		t.Errorf("unexpected order: %+v", newest)
	}

	oldest := th.Messages()
	if oldest[0].Text != "a" {
		t.Errorf("Messages should be oldest first, got %+v", oldest)
	}
}

func TestExchange(t *testing.T) {
	t.Run("success appends both sides", func(t *testing.T) {
		th := NewThread()
		mock := assistant.NewMock("أهلاً بك")

		reply, err := th.Exchange(context.Background(), mock, "مرحبا")
		if err != nil {
			t.Fatalf("Exchange: %v", err)
		}
		if reply.Role != assistant.RoleAssistant || reply.Text != "أهلاً بك" {
			t.Errorf("unexpected reply: %+v", reply)
		}
		if th.Len() != 2 {
			t.Errorf("expected 2 messages, got %d", th.Len())
		}
	})

	t.Run("failure keeps the user message", func(t *testing.T) {
		th := NewThread()
		mock := &assistant.Mock{
			CompleteFunc: func(ctx context.Context, _ string) (string, error) {
				return "", assistant.ErrChatFailed
			},
		}

		_, err := th.Exchange(context.Background(), mock, "مرحبا")
		if !errors.Is(err, assistant.ErrChatFailed) {
			t.Fatalf("expected ErrChatFailed, got %v", err)
		}
		msgs := th.Messages()
		if len(msgs) != 1 || msgs[0].Role != assistant.RoleUser {
			t.Errorf("expected only the user message, got %+v", msgs)
		}
	})
}
