// Package speech provides the text-to-speech client for SARA's
// spoken replies.
//
// Assistant text is sent to the remote synthesis endpoint and comes
// back as playable audio. Depending on deployment the endpoint returns
// either raw audio bytes or a JSON envelope carrying base64-encoded
// audio; the client supports both shapes.
//
// Example usage:
//
//	client, _ := speech.NewClient(
//	    speech.WithAPIKey(os.Getenv("GROQ_API_KEY")),
//	)
//	result, _ := client.Synthesize(ctx, "مرحباً")
//	// result.Audio contains MP3 audio bytes
package speech

import "context"

// Synthesizer converts text to playable audio.
// All implementations must satisfy this interface so the call session
// can run against a fake in tests.
type Synthesizer interface {
	// Synthesize converts text to audio, returning the complete
	// audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)
}

// AudioResult represents a complete synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding.
	Format Format

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request round-trip time in milliseconds.
	LatencyMs int64
}

// Format identifies the audio container returned by the endpoint.
type Format string

const (
	// FormatMP3 is MP3 audio, the default synthesis output.
	FormatMP3 Format = "mp3"

	// FormatWAV is PCM16 audio in a WAV container.
	FormatWAV Format = "wav"
)
