// SARA server - voice assistant for Saudi government services.
// Exposes the call session and service screens over HTTP/websocket.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sara-assist/go-sara/internal/config"
	"github.com/sara-assist/go-sara/internal/log"
	"github.com/sara-assist/go-sara/pkg/assistant"
	"github.com/sara-assist/go-sara/pkg/audio"
	"github.com/sara-assist/go-sara/pkg/call"
	"github.com/sara-assist/go-sara/pkg/gov"
	"github.com/sara-assist/go-sara/pkg/speech"
	"github.com/sara-assist/go-sara/pkg/transcribe"
	"github.com/sara-assist/go-sara/pkg/web"
)

func main() {
	backend := flag.String("audio", "", "audio backend: auto, oto, malgo, mock (overrides SARA_AUDIO_BACKEND)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	if *backend != "" {
		cfg.AudioBackend = *backend
	}

	capability, err := audio.New(cfg.AudioBackend, logger)
	if err != nil {
		logger.Error("audio init failed", "backend", cfg.AudioBackend, "error", err)
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
		logger.Error("transcription client init failed", "error", err)
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
		logger.Error("chat client init failed", "error", err)
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
		logger.Error("synthesis client init failed", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(cfg.Port, web.Deps{
		Capability:  capability,
		Transcriber: transcriber,
		Completer:   completer,
		Synthesizer: synthesizer,
		Backend:     gov.NewBackend(),
		CallOptions: []call.Option{
			call.WithListenWindow(cfg.ListenWindow()),
			call.WithLogger(logger),
		},
		MetricsEnabled: cfg.MetricsEnabled,
		Logger:         logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			logger.Warn("shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
