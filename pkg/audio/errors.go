package audio

import "errors"

// Sentinel errors.
var (
	// ErrPermissionDenied is returned when microphone access is
	// refused. Fatal to the current call attempt; a later call may
	// retry.
	ErrPermissionDenied = errors.New("audio: microphone permission denied")

	// ErrRecordingUnavailable is returned when no underlying audio
	// engine is present. Fatal to voice features for the session.
	ErrRecordingUnavailable = errors.New("audio: no recording engine available")

	// ErrCapabilityClosed is returned when using a closed capability.
	ErrCapabilityClosed = errors.New("audio: capability closed")

	// ErrUnsupportedFormat is returned for clips the selected engine
	// cannot decode.
	ErrUnsupportedFormat = errors.New("audio: unsupported clip format")
)
