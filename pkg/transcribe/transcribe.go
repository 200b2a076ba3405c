// Package transcribe provides the speech-to-text client for captured
// call audio.
//
// Captured clips are uploaded as multipart form data to the Whisper
// transcription endpoint and come back as plain text. The client is a
// stateless request/response adapter; turn-taking lives in pkg/call.
package transcribe

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("transcribe: API key required")

	// ErrTranscriptionFailed is returned on a non-success response or
	// an empty transcription.
	ErrTranscriptionFailed = errors.New("transcribe: transcription failed")
)

// Transcriber converts a captured audio clip into text.
type Transcriber interface {
	// Transcribe returns the transcription of the given audio bytes.
	// The clip must be in a container format the endpoint accepts
	// (WAV or M4A).
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// APIError represents an error response from the transcription API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("transcribe: API error %d: %s", e.StatusCode, e.Message)
}
