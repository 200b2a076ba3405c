package speech

import (
	"context"
	"sync"
)

// Mock implements Synthesizer for testing.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns a small silent MP3-shaped buffer.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	mu    sync.Mutex
	calls []string
}

// NewMock creates a mock synthesizer with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*AudioResult, error) {
			// Roughly natural pacing: a handful of bytes per character.
			return &AudioResult{
				Audio:     make([]byte, 64+len(text)*8),
				Format:    FormatMP3,
				CharCount: len([]rune(text)),
				LatencyMs: 5,
			}, nil
		},
	}
}

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string) (*AudioResult, error) {
			return nil, err
		},
	}
}

// Synthesize records the call and delegates to SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return nil, ErrSynthesisFailed
}

// Calls returns all synthesized texts in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Synthesize invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Synthesizer at compile time.
var _ Synthesizer = (*Mock)(nil)
