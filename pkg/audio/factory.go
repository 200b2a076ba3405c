package audio

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"
)

// Backend names accepted by New.
const (
	BackendAuto  = "auto"
	BackendOto   = "oto"
	BackendMalgo = "malgo"
	BackendMock  = "mock"
)

// New builds a Capability for the requested backend. "auto" prefers
// the oto playback engine and falls back to malgo when the oto context
// cannot be created. Capture always runs on malgo regardless of the
// playback engine; "mock" returns the in-memory fake.
func New(backend string, logger *slog.Logger) (Capability, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audio")

	if backend == BackendMock {
		return NewMock(), nil
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		logger.Debug("miniaudio", "msg", msg)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordingUnavailable, err)
	}

	var engine player
	switch backend {
	case BackendAuto:
		oto, otoErr := newOtoPlayer(logger)
		if otoErr != nil {
			logger.Warn("oto engine unavailable, using malgo playback", "error", otoErr)
			engine = newMalgoPlayer(mctx, logger)
		} else {
			engine = oto
		}
	case BackendOto:
		oto, otoErr := newOtoPlayer(logger)
		if otoErr != nil {
			_ = mctx.Uninit()
			mctx.Free()
			return nil, otoErr
		}
		engine = oto
	case BackendMalgo:
		engine = newMalgoPlayer(mctx, logger)
	default:
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}

	logger.Info("audio capability ready", "playback", engine.name())

	return &deviceCapability{
		ctx:      mctx,
		recorder: newMalgoRecorder(mctx, logger),
		player:   engine,
		logger:   logger,
	}, nil
}
