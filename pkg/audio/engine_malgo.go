package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// malgoPlayer plays PCM through a per-clip malgo device. Unlike the
// oto engine, every device must be explicitly stopped and uninited or
// the native handle leaks.
type malgoPlayer struct {
	ctx    *malgo.AllocatedContext
	logger *slog.Logger
}

func newMalgoPlayer(ctx *malgo.AllocatedContext, logger *slog.Logger) *malgoPlayer {
	return &malgoPlayer{ctx: ctx, logger: logger.With("engine", "malgo")}
}

func (m *malgoPlayer) play(clip *pcmClip, onDone func()) (func(), error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(clip.channels)
	cfg.SampleRate = uint32(clip.sampleRate)

	var (
		mu      sync.Mutex
		offset  int
		stopped bool
		done    sync.Once
	)
	pcm := clip.data

	var device *malgo.Device

	finish := func() {
		done.Do(func() {
			// Uninit must not run inside the data callback; the
			// library deadlocks on its own device lock.
			go func() {
				device.Uninit()
				onDone()
			}()
		})
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return
			}
			n := copy(out, pcm[offset:])
			offset += n
			if offset >= len(pcm) {
				finish()
			}
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("malgo playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("start playback: %w", err)
	}

	halt := func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
		done.Do(func() {
			_ = device.Stop()
			device.Uninit()
		})
	}
	return halt, nil
}

func (m *malgoPlayer) name() string { return "malgo" }

func (m *malgoPlayer) close() error { return nil }

// malgoRecorder captures microphone PCM through a malgo device.
type malgoRecorder struct {
	ctx    *malgo.AllocatedContext
	logger *slog.Logger
}

func newMalgoRecorder(ctx *malgo.AllocatedContext, logger *slog.Logger) *malgoRecorder {
	return &malgoRecorder{ctx: ctx, logger: logger.With("engine", "malgo")}
}

// start begins capture and returns a finalizer that stops the device
// and yields the captured audio as a WAV clip.
func (r *malgoRecorder) start() (func() (Clip, error), error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = captureChannels
	cfg.SampleRate = captureSampleRate
	cfg.PeriodSizeInMilliseconds = 20

	var (
		mu  sync.Mutex
		buf []byte
	)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, in []byte, frameCount uint32) {
			mu.Lock()
			buf = append(buf, in...)
			mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(r.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	finalize := func() (Clip, error) {
		_ = device.Stop()
		device.Uninit()

		mu.Lock()
		pcm := buf
		buf = nil
		mu.Unlock()

		return Clip{
			Data:   encodeWAV(pcm, captureSampleRate, captureChannels),
			Format: "wav",
		}, nil
	}
	return finalize, nil
}
