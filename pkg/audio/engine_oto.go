package audio

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	oto "github.com/ebitengine/oto/v3"
)

// otoPlayer plays PCM through an oto context. oto allows a single
// context per process, created once at engine init; players are cheap
// per-clip objects that must be closed once they stop.
type otoPlayer struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
	logger     *slog.Logger
}

func newOtoPlayer(logger *slog.Logger) (*otoPlayer, error) {
	// 44.1kHz stereo matches go-mp3 output, so MP3 clips need no
	// conversion on this engine.
	opts := &oto.NewContextOptions{
		SampleRate:   44100,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	return &otoPlayer{
		ctx:        ctx,
		sampleRate: 44100,
		channels:   2,
		logger:     logger.With("engine", "oto"),
	}, nil
}

func (o *otoPlayer) play(clip *pcmClip, onDone func()) (func(), error) {
	pcm := clip.conform(o.sampleRate, o.channels)
	p := o.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()

	var stopOnce sync.Once
	stopCh := make(chan struct{})

	// oto offers no completion callback; poll the player and close it
	// once it drains. Close after pause is mandatory with this
	// library or the player leaks.
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if !p.IsPlaying() {
					_ = p.Close()
					onDone()
					return
				}
			}
		}
	}()

	halt := func() {
		stopOnce.Do(func() { close(stopCh) })
		p.Pause()
		_ = p.Close()
	}
	return halt, nil
}

func (o *otoPlayer) name() string { return "oto" }

func (o *otoPlayer) close() error {
	// The oto context cannot be torn down; suspend it instead.
	return o.ctx.Suspend()
}
