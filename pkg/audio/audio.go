// Package audio abstracts platform audio capture and playback behind a
// single capability contract.
//
// Two underlying playback libraries with divergent lifecycles may be
// present at runtime: an oto-based engine whose players must be closed
// after they pause, and a malgo-based engine whose devices need an
// explicit stop and uninit. The capability presents one shape over
// whichever engine is actually selected; callers (the call session)
// never see the difference.
//
// Capture and playback handles are exclusively owned: whichever phase
// created a handle must release it, on every exit path, before moving
// on. Stop calls are idempotent.
package audio

import (
	"context"
	"io"
)

// Capability is the uniform audio surface the call session relies on.
type Capability interface {
	// RequestPermission verifies microphone access. It must succeed
	// before any recording attempt. Returns ErrPermissionDenied or
	// ErrRecordingUnavailable on failure.
	RequestPermission(ctx context.Context) error

	// ConfigureMode applies session-level audio routing options.
	// Applied once before the first recording of a call.
	ConfigureMode(mode Mode) error

	// StartRecording begins capturing microphone audio and returns
	// the owning handle.
	StartRecording(ctx context.Context) (*Recording, error)

	// StopRecording finalizes a recording and returns the captured
	// clip. Calling it on an already-stopped handle is a no-op that
	// returns the same clip.
	StopRecording(rec *Recording) (Clip, error)

	// Play starts playback of a decoded clip and returns the owning
	// handle. The handle's Done channel is closed exactly once when
	// natural playback end is reached; it is never closed by Stop.
	Play(ctx context.Context, clip Clip) (*Playback, error)

	// Stop halts playback. Idempotent. Because the natural-completion
	// notification will not fire after a manual stop, the caller must
	// run any pending continuation itself.
	Stop(pb *Playback) error

	// Name returns the backend name (e.g. "oto", "malgo", "mock").
	Name() string

	// Close releases all engine resources.
	io.Closer
}

// Mode holds session-level audio routing options.
type Mode struct {
	// AllowBackgroundRecording keeps capture alive when the app is
	// backgrounded.
	AllowBackgroundRecording bool

	// PlayThroughSilentSwitch routes playback audibly even when the
	// device silent switch is on.
	PlayThroughSilentSwitch bool
}

// Clip is finalized audio data ready for upload or playback.
type Clip struct {
	// Data is the encoded audio bytes.
	Data []byte

	// Format is the container format: "wav" for captured clips,
	// "mp3" for synthesized ones.
	Format string
}

// Empty reports whether the clip carries no audio.
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}
