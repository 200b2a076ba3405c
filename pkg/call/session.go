package call

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sara-assist/go-sara/pkg/assistant"
	"github.com/sara-assist/go-sara/pkg/audio"
	"github.com/sara-assist/go-sara/pkg/speech"
	"github.com/sara-assist/go-sara/pkg/transcribe"
)

// Session is the turn-taking state machine for one voice call.
//
// All audio and network work runs on goroutines the session spawns;
// every result re-checks the current state under the session lock
// before acting, so anything that resolves after hang-up is discarded.
// The session holds at most one of {recording, playback} at any
// instant.
type Session struct {
	id          string
	capability  audio.Capability
	transcriber transcribe.Transcriber
	completer   assistant.Completer
	synthesizer speech.Synthesizer

	cfg     Config
	logger  *slog.Logger
	metrics *MetricsCollector

	ctx    context.Context
	cancel context.CancelFunc

	onState      func(State)
	onTranscript func(TranscriptLine)
	onNotice     func(string)

	mu              sync.Mutex
	state           State
	muted           bool
	speakerEnabled  bool
	duration        int
	transcript      []TranscriptLine
	activeRecording *audio.Recording
	activePlayback  *audio.Playback
	pendingClip     audio.Clip
	cutoff          *time.Timer
	tickerStarted   bool
	ended           chan struct{}
}

// NewSession builds a session over the given capability and clients.
// The session starts in Connecting; no audio or network activity
// happens until Start.
func NewSession(
	capability audio.Capability,
	transcriber transcribe.Transcriber,
	completer assistant.Completer,
	synthesizer speech.Synthesizer,
	opts ...Option,
) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := uuid.NewString()
	return &Session{
		id:          id,
		capability:  capability,
		transcriber: transcriber,
		completer:   completer,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      cfg.Logger.With("component", "call", "call_id", id),
		metrics:     NewMetricsCollector(),
		state:       StateConnecting,
		ended:       make(chan struct{}),
	}
}

// OnStateChange sets the state-transition callback. Set before Start.
func (s *Session) OnStateChange(fn func(State)) { s.onState = fn }

// OnTranscript sets the transcript-append callback. Set before Start.
func (s *Session) OnTranscript(fn func(TranscriptLine)) { s.onTranscript = fn }

// OnNotice sets the user-facing failure-notice callback. Notices are
// localized one-liners; raw errors never cross this boundary. Set
// before Start.
func (s *Session) OnNotice(fn func(string)) { s.onNotice = fn }

// Start connects the call: verifies microphone permission, configures
// the audio mode, appends the welcome line, and begins speaking it.
// Permission or device failure ends the session and returns the error.
// Returns ErrCallEnded if the session was already hung up.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return ErrCallEnded
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	callCtx := s.ctx
	s.mu.Unlock()

	if err := s.capability.RequestPermission(callCtx); err != nil {
		notice := NoticeMicDenied
		if errors.Is(err, audio.ErrRecordingUnavailable) {
			notice = NoticeVoiceUnavailable
		}
		s.mu.Lock()
		emits := s.endLocked()
		s.mu.Unlock()
		s.emitNotice(notice)
		run(emits)
		return fmt.Errorf("call: permission: %w", err)
	}

	if err := s.capability.ConfigureMode(audio.Mode{
		AllowBackgroundRecording: s.cfg.AllowBackgroundRecording,
		PlayThroughSilentSwitch:  true,
	}); err != nil {
		s.logger.Warn("audio mode configuration failed", "error", err)
	}

	line := TranscriptLine{Speaker: SpeakerAssistant, Text: s.cfg.WelcomeText}
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return ErrCallEnded
	}
	s.transcript = append(s.transcript, line)
	s.mu.Unlock()
	s.emitTranscript(line)

	s.logger.Info("call connected", "backend", s.capability.Name())
	go s.speak(s.cfg.WelcomeText, false)
	return nil
}

// HangUp ends the call from any state: the owned audio resource is
// released synchronously, timers are cleared, and the duration counter
// freezes. Safe to call more than once.
func (s *Session) HangUp() {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return
	}
	emits := s.endLocked()
	s.mu.Unlock()
	run(emits)
	s.logger.Info("call ended", "duration_s", s.DurationSeconds())
}

// endLocked drives the session to Ended. Caller holds the lock.
// Idempotent: a second call on an ended session does nothing.
func (s *Session) endLocked() []func() {
	if s.state == StateEnded {
		return nil
	}
	if s.cutoff != nil {
		s.cutoff.Stop()
		s.cutoff = nil
	}
	if s.activeRecording != nil {
		if _, err := s.capability.StopRecording(s.activeRecording); err != nil {
			s.logger.Warn("recording release failed", "error", err)
		}
		s.activeRecording = nil
	}
	if s.activePlayback != nil {
		_ = s.capability.Stop(s.activePlayback)
		s.activePlayback = nil
	}
	emits := s.setStateLocked(StateEnded)
	close(s.ended)
	if s.cancel != nil {
		s.cancel()
	}
	return emits
}

// ToggleMute flips the mute flag and returns the new value. Muting
// while Listening stops the in-flight recording without leaving
// Listening; unmuting starts a fresh recording.
func (s *Session) ToggleMute() bool {
	s.mu.Lock()
	s.muted = !s.muted
	muted := s.muted

	if s.state == StateListening {
		if muted {
			if s.activeRecording != nil {
				clip, err := s.capability.StopRecording(s.activeRecording)
				if err != nil {
					s.logger.Warn("recording stop on mute failed", "error", err)
				}
				s.pendingClip = clip
				s.activeRecording = nil
			}
		} else {
			s.pendingClip = audio.Clip{}
			s.startCaptureLocked()
		}
	}
	s.mu.Unlock()

	s.logger.Debug("mute toggled", "muted", muted)
	return muted
}

// ToggleSpeaker flips audible routing and returns the new value. It
// never changes state.
func (s *Session) ToggleSpeaker() bool {
	s.mu.Lock()
	s.speakerEnabled = !s.speakerEnabled
	on := s.speakerEnabled
	s.mu.Unlock()
	return on
}

// FinishListening closes the listen window early (push-to-talk stop).
// A no-op outside Listening.
func (s *Session) FinishListening() {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return
	}
	if s.cutoff != nil {
		s.cutoff.Stop()
		s.cutoff = nil
	}
	emits := s.closeListenWindowLocked()
	s.mu.Unlock()
	run(emits)
}

// cutoffFired runs when the listen window's hard timer elapses.
func (s *Session) cutoffFired() {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return
	}
	s.cutoff = nil
	emits := s.closeListenWindowLocked()
	s.mu.Unlock()
	run(emits)
}

// closeListenWindowLocked finalizes the current capture and moves to
// Processing. Caller holds the lock and has cleared the cutoff timer.
func (s *Session) closeListenWindowLocked() []func() {
	clip := s.pendingClip
	s.pendingClip = audio.Clip{}
	if s.activeRecording != nil {
		finalized, err := s.capability.StopRecording(s.activeRecording)
		if err != nil {
			s.logger.Warn("recording finalize failed", "error", err)
		} else {
			clip = finalized
		}
		s.activeRecording = nil
	}

	emits := s.setStateLocked(StateProcessing)
	s.metrics.MarkListenEnd()
	go s.processTurn(clip)
	return emits
}

// processTurn runs one captured clip through transcription and chat,
// then hands the reply to speak. Any failure drops the session back to
// Listening with an apology line.
func (s *Session) processTurn(clip audio.Clip) {
	if clip.Empty() {
		s.mu.Lock()
		if s.state != StateProcessing {
			s.mu.Unlock()
			return
		}
		emits := s.enterListeningLocked()
		s.mu.Unlock()
		s.emitNotice(NoticeNothingHeard)
		run(emits)
		return
	}

	text, err := s.transcriber.Transcribe(s.ctx, clip.Data)
	if err != nil {
		s.logger.Warn("transcription failed", "error", err)
		s.failTurn()
		return
	}

	userLine := TranscriptLine{Speaker: SpeakerUser, Text: text}
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		s.logger.Debug("late transcription result discarded")
		return
	}
	s.metrics.MarkTranscript()
	s.transcript = append(s.transcript, userLine)
	s.mu.Unlock()
	s.emitTranscript(userLine)

	reply, err := s.completer.Complete(s.ctx, text)
	if err != nil {
		s.logger.Warn("chat completion failed", "error", err)
		s.failTurn()
		return
	}

	assistantLine := TranscriptLine{Speaker: SpeakerAssistant, Text: reply}
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		s.logger.Debug("late chat result discarded")
		return
	}
	s.metrics.MarkReply()
	s.transcript = append(s.transcript, assistantLine)
	s.mu.Unlock()
	s.emitTranscript(assistantLine)

	s.speak(reply, true)
}

// failTurn surfaces a recoverable turn failure: apology line, notice,
// back to Listening. Results landing after hang-up are discarded.
func (s *Session) failTurn() {
	line := TranscriptLine{Speaker: SpeakerAssistant, Text: NoticeTurnFailed}
	s.mu.Lock()
	if s.state != StateProcessing {
		s.mu.Unlock()
		s.logger.Debug("late turn failure discarded")
		return
	}
	s.transcript = append(s.transcript, line)
	emits := s.enterListeningLocked()
	s.mu.Unlock()

	s.emitTranscript(line)
	s.emitNotice(NoticeTurnFailed)
	run(emits)
}

// speak synthesizes text and plays it, then re-enters Listening when
// natural playback end fires. turn marks whether this utterance closes
// a metrics-tracked conversation turn.
func (s *Session) speak(text string, turn bool) {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return
	}
	emits := s.setStateLocked(StateSpeaking)
	s.mu.Unlock()
	run(emits)

	result, err := s.synthesizer.Synthesize(s.ctx, text)
	if err != nil {
		s.logger.Warn("synthesis failed", "error", err)
		s.resumeAfterSpeakFailure()
		return
	}
	if turn {
		s.metrics.MarkAudio()
	}

	clip := audio.Clip{Data: result.Audio, Format: string(result.Format)}

	s.mu.Lock()
	if s.state != StateSpeaking {
		s.mu.Unlock()
		s.logger.Debug("late synthesis result discarded")
		return
	}
	pb, err := s.capability.Play(s.ctx, clip)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("playback start failed", "error", err)
		s.resumeAfterSpeakFailure()
		return
	}
	s.activePlayback = pb
	s.mu.Unlock()

	go func() {
		select {
		case <-pb.Done():
			s.playbackComplete(pb)
		case <-s.ended:
		}
	}()
}

// resumeAfterSpeakFailure drops back to Listening when the assistant
// voice could not be produced. The reply text is already on the
// transcript, so the turn is not lost.
func (s *Session) resumeAfterSpeakFailure() {
	s.mu.Lock()
	if s.state != StateSpeaking {
		s.mu.Unlock()
		return
	}
	emits := s.enterListeningLocked()
	s.mu.Unlock()
	s.emitNotice(NoticeTurnFailed)
	run(emits)
}

// playbackComplete handles natural playback end.
func (s *Session) playbackComplete(pb *audio.Playback) {
	s.mu.Lock()
	if s.state != StateSpeaking || s.activePlayback != pb {
		s.mu.Unlock()
		return
	}
	s.activePlayback = nil
	emits := s.enterListeningLocked()
	s.mu.Unlock()
	run(emits)
}

// enterListeningLocked opens a new listen window: capture starts
// unless muted and the hard cutoff timer is armed. Caller holds the
// lock.
func (s *Session) enterListeningLocked() []func() {
	emits := s.setStateLocked(StateListening)
	s.pendingClip = audio.Clip{}
	if !s.muted {
		s.startCaptureLocked()
	}
	s.cutoff = time.AfterFunc(s.cfg.ListenWindow, s.cutoffFired)
	return emits
}

// startCaptureLocked begins a recording. Failure is surfaced as a log
// only; the cutoff timer still runs and the turn resolves as silence.
func (s *Session) startCaptureLocked() {
	rec, err := s.capability.StartRecording(s.ctx)
	if err != nil {
		s.logger.Warn("recording start failed", "error", err)
		return
	}
	s.activeRecording = rec
}

// setStateLocked transitions state and returns the emission for it.
// The duration counter starts the first time the session leaves
// Connecting.
func (s *Session) setStateLocked(st State) []func() {
	prev := s.state
	s.state = st
	if prev == StateConnecting && st != StateConnecting {
		s.startDurationLocked()
	}
	s.logger.Debug("state transition", "from", string(prev), "to", string(st))
	return []func(){func() { s.emitState(st) }}
}

// startDurationLocked begins the once-per-second duration counter.
func (s *Session) startDurationLocked() {
	if s.tickerStarted {
		return
	}
	s.tickerStarted = true
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-s.ended:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.state != StateEnded {
					s.duration++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// State returns the current call state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Muted reports whether the microphone is muted.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// SpeakerEnabled reports whether audible routing is on.
func (s *Session) SpeakerEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speakerEnabled
}

// DurationSeconds returns the elapsed call time. Frozen after Ended.
func (s *Session) DurationSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Transcript returns a copy of the transcript, oldest first.
func (s *Session) Transcript() []TranscriptLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TranscriptLine, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Metrics exposes the per-turn latency collector.
func (s *Session) Metrics() *MetricsCollector {
	return s.metrics
}

// Done returns a channel closed when the session reaches Ended.
func (s *Session) Done() <-chan struct{} {
	return s.ended
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot is a point-in-time view of the session for presentation.
type Snapshot struct {
	ID             string           `json:"id"`
	State          State            `json:"state"`
	Muted          bool             `json:"muted"`
	SpeakerEnabled bool             `json:"speaker_enabled"`
	Duration       int              `json:"duration_seconds"`
	Transcript     []TranscriptLine `json:"transcript"`
}

// Snapshot returns the session's current presentation view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript := make([]TranscriptLine, len(s.transcript))
	copy(transcript, s.transcript)
	return Snapshot{
		ID:             s.id,
		State:          s.state,
		Muted:          s.muted,
		SpeakerEnabled: s.speakerEnabled,
		Duration:       s.duration,
		Transcript:     transcript,
	}
}

func (s *Session) emitState(st State) {
	if s.onState != nil {
		s.onState(st)
	}
}

func (s *Session) emitTranscript(line TranscriptLine) {
	if s.onTranscript != nil {
		s.onTranscript(line)
	}
}

func (s *Session) emitNotice(text string) {
	if s.onNotice != nil {
		s.onNotice(text)
	}
}

func run(emits []func()) {
	for _, f := range emits {
		f()
	}
}
