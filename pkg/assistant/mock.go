package assistant

import (
	"context"
	"sync"
)

// Mock implements Completer for testing.
type Mock struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, Reply is returned.
	CompleteFunc func(ctx context.Context, userText string) (string, error)

	// Reply is the canned reply returned when CompleteFunc is nil.
	Reply string

	mu    sync.Mutex
	calls []string
}

// NewMock creates a mock that always returns the given reply.
func NewMock(reply string) *Mock {
	return &Mock{Reply: reply}
}

// Complete records the call and returns the configured reply.
func (m *Mock) Complete(ctx context.Context, userText string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, userText)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, userText)
	}
	return m.Reply, nil
}

// Calls returns all recorded user texts.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Complete invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Completer at compile time.
var _ Completer = (*Mock)(nil)
