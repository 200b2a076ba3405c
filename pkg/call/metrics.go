package call

import (
	"sync"
	"time"
)

// TurnMetrics tracks latency at each stage of one conversation turn.
// All durations are measured from the moment the listen window closed.
type TurnMetrics struct {
	ListenEndTime  time.Time // when the recording was finalized
	TranscriptTime time.Time // when transcription completed
	ReplyTime      time.Time // when the chat completion returned
	AudioTime      time.Time // when synthesis returned playable audio

	TranscribeLatency time.Duration
	ChatLatency       time.Duration
	SynthesisLatency  time.Duration
	TotalLatency      time.Duration
}

// MetricsCollector collects per-turn latency metrics. It is
// goroutine-safe and can be used from the session's async callbacks.
type MetricsCollector struct {
	mu      sync.Mutex
	current TurnMetrics
	history []TurnMetrics

	onUpdate func(TurnMetrics)
}

// NewMetricsCollector creates a collector with bounded history.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		history: make([]TurnMetrics, 0, 100),
	}
}

// OnUpdate sets a callback that fires whenever a stage completes.
func (m *MetricsCollector) OnUpdate(fn func(TurnMetrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// MarkListenEnd starts a new turn measurement. This is the reference
// point for all stage latencies.
func (m *MetricsCollector) MarkListenEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = TurnMetrics{ListenEndTime: time.Now()}
}

// MarkTranscript records transcription completion.
func (m *MetricsCollector) MarkTranscript() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.TranscriptTime = time.Now()
	if !m.current.ListenEndTime.IsZero() {
		m.current.TranscribeLatency = m.current.TranscriptTime.Sub(m.current.ListenEndTime)
	}
	m.notify()
}

// MarkReply records chat-completion return.
func (m *MetricsCollector) MarkReply() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ReplyTime = time.Now()
	if !m.current.TranscriptTime.IsZero() {
		m.current.ChatLatency = m.current.ReplyTime.Sub(m.current.TranscriptTime)
	}
	m.notify()
}

// MarkAudio records synthesis completion and closes out the turn.
func (m *MetricsCollector) MarkAudio() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.AudioTime = time.Now()
	if !m.current.ReplyTime.IsZero() {
		m.current.SynthesisLatency = m.current.AudioTime.Sub(m.current.ReplyTime)
	}
	if !m.current.ListenEndTime.IsZero() {
		m.current.TotalLatency = m.current.AudioTime.Sub(m.current.ListenEndTime)
	}
	m.history = append(m.history, m.current)
	if len(m.history) > 100 {
		m.history = m.history[1:]
	}
	m.notify()
}

// Current returns a copy of the in-flight turn's metrics.
func (m *MetricsCollector) Current() TurnMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// AverageTotal returns the mean end-to-end latency over recorded
// turns, or zero when none completed.
func (m *MetricsCollector) AverageTotal() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return 0
	}
	var sum time.Duration
	for _, t := range m.history {
		sum += t.TotalLatency
	}
	return sum / time.Duration(len(m.history))
}

// TurnCount reports the number of completed turns.
func (m *MetricsCollector) TurnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

func (m *MetricsCollector) notify() {
	if m.onUpdate != nil {
		m.onUpdate(m.current)
	}
}
