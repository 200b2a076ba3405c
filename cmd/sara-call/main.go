// sara-call - interactive voice call with SARA from the terminal.
// Speaks through the local audio devices; single-key commands drive
// mute, push-to-talk, speaker, and hang-up.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sara-assist/go-sara/internal/config"
	"github.com/sara-assist/go-sara/internal/log"
	"github.com/sara-assist/go-sara/pkg/assistant"
	"github.com/sara-assist/go-sara/pkg/audio"
	"github.com/sara-assist/go-sara/pkg/call"
	"github.com/sara-assist/go-sara/pkg/speech"
	"github.com/sara-assist/go-sara/pkg/transcribe"
)

func main() {
	backend := flag.String("audio", "", "audio backend: auto, oto, malgo (overrides SARA_AUDIO_BACKEND)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	if *backend != "" {
		cfg.AudioBackend = *backend
	}

	capability, err := audio.New(cfg.AudioBackend, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audio init failed: %v\n", err)
		os.Exit(1)
	}
	defer capability.Close()

	transcriber, err := transcribe.NewClient(
		transcribe.WithAPIKey(cfg.GroqAPIKey),
		transcribe.WithBaseURL(cfg.GroqBaseURL),
		transcribe.WithModel(cfg.WhisperModel),
		transcribe.WithLanguage(cfg.Language),
		transcribe.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client init failed: %v\n", err)
		os.Exit(1)
	}

	completer, err := assistant.NewClient(
		assistant.WithAPIKey(cfg.GroqAPIKey),
		assistant.WithBaseURL(cfg.GroqBaseURL),
		assistant.WithModel(cfg.ChatModel),
		assistant.WithFallbackModel(cfg.ChatFallbackModel),
		assistant.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client init failed: %v\n", err)
		os.Exit(1)
	}

	synthesizer, err := speech.NewClient(
		speech.WithAPIKey(cfg.GroqAPIKey),
		speech.WithBaseURL(cfg.GroqBaseURL),
		speech.WithModel(cfg.TTSModel),
		speech.WithVoice(cfg.TTSVoice),
		speech.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client init failed: %v\n", err)
		os.Exit(1)
	}

	session := call.NewSession(capability, transcriber, completer, synthesizer,
		call.WithListenWindow(cfg.ListenWindow()),
		call.WithLogger(logger),
	)
	session.OnStateChange(func(st call.State) {
		fmt.Printf("-- %s\n", st)
	})
	session.OnTranscript(func(line call.TranscriptLine) {
		prefix := "SARA"
		if line.Speaker == call.SpeakerUser {
			prefix = "You "
		}
		fmt.Printf("%s: %s\n", prefix, line.Text)
	})
	session.OnNotice(func(text string) {
		fmt.Printf("!! %s\n", text)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("Calling SARA... commands: [m]ute  [t]alk done  [s]peaker  [q]uit")
	if err := session.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "call failed: %v\n", err)
		os.Exit(1)
	}

	go readCommands(session)

	select {
	case <-ctx.Done():
		session.HangUp()
	case <-session.Done():
	}
	fmt.Printf("Call ended after %ds.\n", session.DurationSeconds())
}

func readCommands(session *call.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "m":
			if session.ToggleMute() {
				fmt.Println("-- muted")
			} else {
				fmt.Println("-- unmuted")
			}
		case "t":
			session.FinishListening()
		case "s":
			if session.ToggleSpeaker() {
				fmt.Println("-- speaker on")
			} else {
				fmt.Println("-- speaker off")
			}
		case "q":
			session.HangUp()
			return
		}
	}
}
