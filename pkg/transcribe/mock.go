package transcribe

import (
	"context"
	"sync"
)

// Mock implements Transcriber for testing.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, Text is returned.
	TranscribeFunc func(ctx context.Context, audio []byte) (string, error)

	// Text is the canned transcription returned when TranscribeFunc is nil.
	Text string

	mu    sync.Mutex
	calls int
}

// NewMock creates a mock that always returns the given text.
func NewMock(text string) *Mock {
	return &Mock{Text: text}
}

// Transcribe records the call and returns the configured text.
func (m *Mock) Transcribe(ctx context.Context, audio []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return m.Text, nil
}

// CallCount returns the number of Transcribe invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Verify Mock implements Transcriber at compile time.
var _ Transcriber = (*Mock)(nil)
