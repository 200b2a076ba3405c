package audio

import (
	"context"
	"sync"
)

// Mock is an in-memory Capability for tests. Recordings return a
// scripted clip and playbacks complete only when the test fires them,
// so tests control exactly when the loop advances.
type Mock struct {
	mu sync.Mutex

	// PermissionErr is returned by RequestPermission when set.
	PermissionErr error
	// PermissionHook, when set, runs inside RequestPermission before
	// the result is returned. Lets tests interleave session calls
	// with the permission prompt.
	PermissionHook func()
	// RecordErr is returned by StartRecording when set.
	RecordErr error
	// PlayErr is returned by Play when set.
	PlayErr error

	// RecordedClip is the clip every finished recording yields.
	RecordedClip Clip

	mode       Mode
	closed     bool
	recordings int
	playbacks  []*Playback
	played     []Clip
	stops      int
}

// NewMock returns a Mock whose recordings yield a small WAV clip.
func NewMock() *Mock {
	return &Mock{
		RecordedClip: Clip{
			Data:   encodeWAV(make([]byte, 3200), captureSampleRate, captureChannels),
			Format: "wav",
		},
	}
}

func (m *Mock) RequestPermission(ctx context.Context) error {
	m.mu.Lock()
	closed := m.closed
	hook := m.PermissionHook
	err := m.PermissionErr
	m.mu.Unlock()
	if closed {
		return ErrCapabilityClosed
	}
	if hook != nil {
		hook()
	}
	return err
}

func (m *Mock) ConfigureMode(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrCapabilityClosed
	}
	m.mode = mode
	return nil
}

func (m *Mock) StartRecording(ctx context.Context) (*Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrCapabilityClosed
	}
	if m.RecordErr != nil {
		return nil, m.RecordErr
	}
	m.recordings++
	clip := m.RecordedClip
	return &Recording{finalize: func() (Clip, error) { return clip, nil }}, nil
}

func (m *Mock) StopRecording(rec *Recording) (Clip, error) {
	if rec == nil {
		return Clip{}, nil
	}
	return rec.stop()
}

func (m *Mock) Play(ctx context.Context, clip Clip) (*Playback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrCapabilityClosed
	}
	if m.PlayErr != nil {
		return nil, m.PlayErr
	}
	pb := newPlayback(func() {})
	m.playbacks = append(m.playbacks, pb)
	m.played = append(m.played, clip)
	return pb, nil
}

func (m *Mock) Stop(pb *Playback) error {
	if pb == nil {
		return nil
	}
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
	pb.stop()
	return nil
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FinishPlayback fires natural completion on the most recent playback
// that has not already ended. It reports whether one was found.
func (m *Mock) FinishPlayback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.playbacks) - 1; i >= 0; i-- {
		pb := m.playbacks[i]
		select {
		case <-pb.Done():
			continue
		default:
		}
		if pb.Stopped() {
			continue
		}
		pb.complete()
		return true
	}
	return false
}

// RecordingCount reports how many recordings were started.
func (m *Mock) RecordingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordings
}

// PlaybackCount reports how many playbacks were started.
func (m *Mock) PlaybackCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.playbacks)
}

// StopCount reports how many manual playback stops were requested.
func (m *Mock) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// PlayedClips returns the clips handed to Play, in order.
func (m *Mock) PlayedClips() []Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Clip, len(m.played))
	copy(out, m.played)
	return out
}

// Mode returns the mode set by ConfigureMode.
func (m *Mock) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

var _ Capability = (*Mock)(nil)
