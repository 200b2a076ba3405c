// Package call implements the voice conversation loop: the turn-taking
// state machine that drives a simulated call with the assistant.
//
// One Session owns one call. Each turn captures microphone audio,
// transcribes it, asks the assistant for a reply, synthesizes the
// reply, and plays it back, then listens again. The session owns the
// single recording/playback slot; capture and playback never overlap.
package call

import "errors"

// ErrCallEnded is returned by Start when the session was hung up
// before or while connecting.
var ErrCallEnded = errors.New("call: session already ended")

// State identifies the current phase of a call.
type State string

const (
	// StateConnecting is the initial state. The welcome line is
	// appended and queued for synthesis.
	StateConnecting State = "connecting"

	// StateSpeaking means assistant audio is playing.
	StateSpeaking State = "speaking"

	// StateListening means the microphone is live (unless muted) and
	// the auto-cutoff timer is armed.
	StateListening State = "listening"

	// StateProcessing means the captured clip is moving through
	// transcription, chat completion, and synthesis.
	StateProcessing State = "processing"

	// StateEnded is terminal. All resources are released and the
	// duration counter is frozen.
	StateEnded State = "ended"
)

// Speaker identifies who produced a transcript line.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// TranscriptLine is one utterance in the call transcript.
// Immutable once appended.
type TranscriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Localized user-facing texts. Raw errors never reach the
// presentation layer; these summaries do.
const (
	// DefaultWelcome is spoken when the call connects.
	DefaultWelcome = "مرحباً! أنا سارا. كيف يمكنني مساعدتك؟"

	// NoticeTurnFailed is shown when transcription or chat fails for
	// the current turn. The loop continues.
	NoticeTurnFailed = "عذراً، حدث خطأ أثناء معالجة طلبك. حاول مرة أخرى."

	// NoticeNothingHeard is shown when the listen window closes with
	// no usable audio.
	NoticeNothingHeard = "لم أسمع شيئاً. حاول التحدث مرة أخرى."

	// NoticeMicDenied is shown when microphone permission is refused.
	// The call ends.
	NoticeMicDenied = "لا يمكن الوصول إلى الميكروفون. يرجى السماح بالوصول والمحاولة مجدداً."

	// NoticeVoiceUnavailable is shown when no audio engine is
	// present. Voice features are unavailable for the session.
	NoticeVoiceUnavailable = "ميزة الصوت غير متاحة على هذا الجهاز."
)
