package call

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sara-assist/go-sara/pkg/assistant"
	"github.com/sara-assist/go-sara/pkg/audio"
	"github.com/sara-assist/go-sara/pkg/speech"
	"github.com/sara-assist/go-sara/pkg/transcribe"
)

type fixture struct {
	session *Session
	audio   *audio.Mock
	stt     *transcribe.Mock
	chat    *assistant.Mock
	tts     *speech.Mock

	mu       sync.Mutex
	states   []State
	notices  []string
	appended []TranscriptLine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		audio: audio.NewMock(),
		stt:   transcribe.NewMock("مرحبا"),
		chat:  assistant.NewMock("أهلاً"),
		tts:   speech.NewMock(),
	}

	opts = append([]Option{WithListenWindow(40 * time.Millisecond)}, opts...)
	f.session = NewSession(f.audio, f.stt, f.chat, f.tts, opts...)

	f.session.OnStateChange(func(st State) {
		f.mu.Lock()
		f.states = append(f.states, st)
		f.mu.Unlock()
	})
	f.session.OnNotice(func(text string) {
		f.mu.Lock()
		f.notices = append(f.notices, text)
		f.mu.Unlock()
	})
	f.session.OnTranscript(func(line TranscriptLine) {
		f.mu.Lock()
		f.appended = append(f.appended, line)
		f.mu.Unlock()
	})

	t.Cleanup(f.session.HangUp)
	return f
}

func (f *fixture) stateCount(st State) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.states {
		if s == st {
			n++
		}
	}
	return n
}

func (f *fixture) noticeSeen(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notices {
		if n == text {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

// resourcesHeld reports which of the two audio resources the session
// currently owns.
func resourcesHeld(s *Session) (recording, playback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRecording != nil, s.activePlayback != nil
}

func TestEndToEndConversationTurn(t *testing.T) {
	f := newFixture(t)

	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Welcome line appears immediately, then the welcome is spoken.
	waitFor(t, "welcome playback", func() bool { return f.audio.PlaybackCount() == 1 })
	if st := f.session.State(); st != StateSpeaking {
		t.Fatalf("expected Speaking, got %s", st)
	}

	// Natural playback end opens the first listen window.
	f.audio.FinishPlayback()
	waitFor(t, "listening", func() bool { return f.session.State() == StateListening })
	waitFor(t, "recording started", func() bool { return f.audio.RecordingCount() == 1 })

	// The hard cutoff closes the window; the turn runs through
	// transcription and chat and the reply is spoken.
	waitFor(t, "reply playback", func() bool { return f.audio.PlaybackCount() == 2 })

	want := []TranscriptLine{
		{Speaker: SpeakerAssistant, Text: DefaultWelcome},
		{Speaker: SpeakerUser, Text: "مرحبا"},
		{Speaker: SpeakerAssistant, Text: "أهلاً"},
	}
	got := f.session.Transcript()
	if len(got) != len(want) {
		t.Fatalf("transcript has %d lines, expected %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if f.stt.CallCount() != 1 {
		t.Errorf("expected 1 transcription, got %d", f.stt.CallCount())
	}
	if calls := f.chat.Calls(); len(calls) != 1 || calls[0] != "مرحبا" {
		t.Errorf("unexpected chat calls: %v", calls)
	}

	// Reply finishes playing; the loop returns to Listening.
	f.audio.FinishPlayback()
	waitFor(t, "listening again", func() bool { return f.session.State() == StateListening })
}

func TestHangUpFromEveryState(t *testing.T) {
	t.Run("connecting", func(t *testing.T) {
		f := newFixture(t)
		// Never started; hang-up must still reach Ended cleanly.
		f.session.HangUp()
		if st := f.session.State(); st != StateEnded {
			t.Fatalf("expected Ended, got %s", st)
		}
	})

	t.Run("speaking", func(t *testing.T) {
		f := newFixture(t)
		if err := f.session.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		waitFor(t, "welcome playback", func() bool { return f.audio.PlaybackCount() == 1 })
		f.session.HangUp()
		assertEndedClean(t, f)
		if f.audio.StopCount() != 1 {
			t.Errorf("expected playback stopped once, got %d stops", f.audio.StopCount())
		}
	})

	t.Run("listening", func(t *testing.T) {
		f := newFixture(t, WithListenWindow(time.Minute))
		startToListening(t, f)
		f.session.HangUp()
		assertEndedClean(t, f)
	})

	t.Run("processing", func(t *testing.T) {
		release := make(chan struct{})
		f := newFixture(t)
		f.stt.TranscribeFunc = func(ctx context.Context, _ []byte) (string, error) {
			<-release
			return "متأخر", nil
		}
		startToListening(t, f)
		waitFor(t, "processing", func() bool { return f.session.State() == StateProcessing })
		f.session.HangUp()
		assertEndedClean(t, f)
		close(release)

		// The late transcription must be discarded, not appended.
		time.Sleep(30 * time.Millisecond)
		for _, line := range f.session.Transcript() {
			if line.Text == "متأخر" {
				t.Error("late transcription result was not discarded")
			}
		}
	})

	t.Run("hang up twice", func(t *testing.T) {
		f := newFixture(t)
		f.session.HangUp()
		f.session.HangUp()
		if n := f.stateCount(StateEnded); n != 1 {
			t.Errorf("Ended emitted %d times, expected 1", n)
		}
	})
}

func startToListening(t *testing.T, f *fixture) {
	t.Helper()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "welcome playback", func() bool { return f.audio.PlaybackCount() == 1 })
	f.audio.FinishPlayback()
	waitFor(t, "listening", func() bool { return f.session.State() == StateListening })
}

func assertEndedClean(t *testing.T, f *fixture) {
	t.Helper()
	if st := f.session.State(); st != StateEnded {
		t.Fatalf("expected Ended, got %s", st)
	}
	rec, pb := resourcesHeld(f.session)
	if rec || pb {
		t.Errorf("resources still held after hang-up: recording=%v playback=%v", rec, pb)
	}
	f.session.mu.Lock()
	timerArmed := f.session.cutoff != nil
	f.session.mu.Unlock()
	if timerArmed {
		t.Error("cutoff timer still armed after hang-up")
	}
}

func TestAutoCutoffFiresExactlyOnce(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t)
	f.stt.TranscribeFunc = func(ctx context.Context, _ []byte) (string, error) {
		<-release
		return "", errors.New("aborted")
	}
	defer close(release)

	startToListening(t, f)
	waitFor(t, "processing", func() bool { return f.session.State() == StateProcessing })

	// Several listen windows' worth of time passes while the turn is
	// stuck in Processing; no second cutoff may fire.
	time.Sleep(150 * time.Millisecond)
	if n := f.stateCount(StateProcessing); n != 1 {
		t.Errorf("Processing entered %d times, expected 1", n)
	}
}

func TestMuteWhileListening(t *testing.T) {
	f := newFixture(t, WithListenWindow(time.Minute))
	startToListening(t, f)

	if muted := f.session.ToggleMute(); !muted {
		t.Fatal("expected muted=true after first toggle")
	}
	if st := f.session.State(); st != StateListening {
		t.Errorf("mute changed state to %s", st)
	}
	rec, _ := resourcesHeld(f.session)
	if rec {
		t.Error("recording still held while muted")
	}

	if muted := f.session.ToggleMute(); muted {
		t.Fatal("expected muted=false after second toggle")
	}
	waitFor(t, "fresh recording", func() bool { return f.audio.RecordingCount() == 2 })
	rec, _ = resourcesHeld(f.session)
	if !rec {
		t.Error("no recording held after unmute")
	}
}

func TestSpeakerToggleDoesNotChangeState(t *testing.T) {
	f := newFixture(t, WithListenWindow(time.Minute))
	startToListening(t, f)

	if on := f.session.ToggleSpeaker(); !on {
		t.Fatal("expected speaker on")
	}
	if st := f.session.State(); st != StateListening {
		t.Errorf("speaker toggle changed state to %s", st)
	}
}

func TestPushToTalkClosesWindowEarly(t *testing.T) {
	f := newFixture(t, WithListenWindow(time.Minute))
	startToListening(t, f)

	f.session.FinishListening()
	waitFor(t, "reply playback", func() bool { return f.audio.PlaybackCount() == 2 })
	if f.stt.CallCount() != 1 {
		t.Errorf("expected 1 transcription, got %d", f.stt.CallCount())
	}
}

func TestPermissionDeniedEndsCall(t *testing.T) {
	f := newFixture(t)
	f.audio.PermissionErr = audio.ErrPermissionDenied

	err := f.session.Start(context.Background())
	if !errors.Is(err, audio.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if st := f.session.State(); st != StateEnded {
		t.Errorf("expected Ended, got %s", st)
	}
	if !f.noticeSeen(NoticeMicDenied) {
		t.Error("microphone-denied notice not emitted")
	}
}

func TestRecordingUnavailableNotice(t *testing.T) {
	f := newFixture(t)
	f.audio.PermissionErr = audio.ErrRecordingUnavailable

	if err := f.session.Start(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if !f.noticeSeen(NoticeVoiceUnavailable) {
		t.Error("voice-unavailable notice not emitted")
	}
}

func TestStartAfterHangUpReturnsEnded(t *testing.T) {
	f := newFixture(t)
	f.session.HangUp()

	if err := f.session.Start(context.Background()); !errors.Is(err, ErrCallEnded) {
		t.Fatalf("expected ErrCallEnded, got %v", err)
	}
	if got := len(f.session.Transcript()); got != 0 {
		t.Errorf("expected empty transcript, got %d lines", got)
	}
	if n := f.stateCount(StateEnded); n != 1 {
		t.Errorf("expected one Ended emission, got %d", n)
	}
}

func TestHangUpDuringFailedStart(t *testing.T) {
	f := newFixture(t)
	f.audio.PermissionErr = audio.ErrPermissionDenied
	f.audio.PermissionHook = f.session.HangUp

	if err := f.session.Start(context.Background()); !errors.Is(err, audio.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if st := f.session.State(); st != StateEnded {
		t.Errorf("expected Ended, got %s", st)
	}
	if n := f.stateCount(StateEnded); n != 1 {
		t.Errorf("expected one Ended emission, got %d", n)
	}
	f.session.HangUp()
}

func TestHangUpWhileConnectingSkipsWelcome(t *testing.T) {
	f := newFixture(t)
	f.audio.PermissionHook = f.session.HangUp

	if err := f.session.Start(context.Background()); !errors.Is(err, ErrCallEnded) {
		t.Fatalf("expected ErrCallEnded, got %v", err)
	}
	if got := len(f.session.Transcript()); got != 0 {
		t.Errorf("expected empty transcript after hang-up, got %d lines", got)
	}
	if n := f.tts.CallCount(); n != 0 {
		t.Errorf("expected no synthesis after hang-up, got %d calls", n)
	}
}

func TestTurnFailureRecoversToListening(t *testing.T) {
	f := newFixture(t)
	f.stt.TranscribeFunc = func(ctx context.Context, _ []byte) (string, error) {
		return "", transcribe.ErrTranscriptionFailed
	}

	startToListening(t, f)
	waitFor(t, "back to listening", func() bool {
		return f.stateCount(StateProcessing) == 1 && f.session.State() == StateListening
	})

	if !f.noticeSeen(NoticeTurnFailed) {
		t.Error("turn-failure notice not emitted")
	}
	lines := f.session.Transcript()
	last := lines[len(lines)-1]
	if last.Speaker != SpeakerAssistant || last.Text != NoticeTurnFailed {
		t.Errorf("expected apology line, got %+v", last)
	}
	if f.chat.CallCount() != 0 {
		t.Error("chat called despite transcription failure")
	}
}

func TestSynthesisFailureRecoversToListening(t *testing.T) {
	f := newFixture(t)
	f.tts.SynthesizeFunc = func(ctx context.Context, text string) (*speech.AudioResult, error) {
		return nil, speech.ErrSynthesisFailed
	}

	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// The welcome cannot be synthesized; the loop still reaches
	// Listening instead of wedging in Speaking.
	waitFor(t, "listening", func() bool { return f.session.State() == StateListening })
	if !f.noticeSeen(NoticeTurnFailed) {
		t.Error("failure notice not emitted")
	}
}

func TestResourceMutualExclusionUnderRandomEvents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 5; round++ {
		f := newFixture(t, WithListenWindow(20*time.Millisecond))
		if err := f.session.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}

		for i := 0; i < 40; i++ {
			switch rng.Intn(4) {
			case 0:
				f.audio.FinishPlayback()
			case 1:
				f.session.ToggleMute()
			case 2:
				f.session.FinishListening()
			case 3:
				time.Sleep(time.Duration(rng.Intn(15)) * time.Millisecond)
			}

			rec, pb := resourcesHeld(f.session)
			if rec && pb {
				t.Fatalf("round %d event %d: recording and playback held simultaneously", round, i)
			}
		}

		f.session.HangUp()
		rec, pb := resourcesHeld(f.session)
		if rec || pb {
			t.Fatalf("round %d: resources leaked after hang-up", round)
		}
	}
}

func TestDurationCounter(t *testing.T) {
	f := newFixture(t, WithListenWindow(time.Minute))
	startToListening(t, f)

	waitFor(t, "duration tick", func() bool { return f.session.DurationSeconds() >= 1 })

	f.session.HangUp()
	frozen := f.session.DurationSeconds()
	time.Sleep(1100 * time.Millisecond)
	if got := f.session.DurationSeconds(); got != frozen {
		t.Errorf("duration advanced after Ended: %d -> %d", frozen, got)
	}
}

func TestMetricsTrackTurnStages(t *testing.T) {
	f := newFixture(t)
	startToListening(t, f)
	waitFor(t, "reply playback", func() bool { return f.audio.PlaybackCount() == 2 })
	waitFor(t, "turn recorded", func() bool { return f.session.Metrics().TurnCount() == 1 })

	m := f.session.Metrics().Current()
	if m.TranscriptTime.IsZero() || m.ReplyTime.IsZero() || m.AudioTime.IsZero() {
		t.Errorf("incomplete turn metrics: %+v", m)
	}
	if m.TotalLatency <= 0 {
		t.Errorf("non-positive total latency: %v", m.TotalLatency)
	}
}
