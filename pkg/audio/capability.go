package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// deviceCapability is the hardware-backed Capability. Capture always
// runs on malgo; playback runs on whichever player engine the factory
// selected.
type deviceCapability struct {
	ctx      *malgo.AllocatedContext
	recorder *malgoRecorder
	player   player
	logger   *slog.Logger

	mu         sync.Mutex
	mode       Mode
	permission bool
	closed     bool
}

// RequestPermission verifies microphone access by probing for a
// capture device. Desktop platforms surface permission failures as
// device-init errors, so the probe doubles as the permission dialog.
func (d *deviceCapability) RequestPermission(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrCapabilityClosed
	}
	if d.permission {
		return nil
	}

	infos, err := d.ctx.Devices(malgo.Capture)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordingUnavailable, err)
	}
	if len(infos) == 0 {
		return ErrPermissionDenied
	}

	d.permission = true
	d.logger.Debug("microphone permission granted", "devices", len(infos))
	return nil
}

// ConfigureMode stores session-level routing options. The desktop
// engines have no background or silent-switch notion; the options are
// recorded so the contract holds across platforms.
func (d *deviceCapability) ConfigureMode(mode Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrCapabilityClosed
	}
	d.mode = mode
	d.logger.Debug("audio mode configured",
		"background_recording", mode.AllowBackgroundRecording,
		"silent_switch_playback", mode.PlayThroughSilentSwitch,
	)
	return nil
}

// StartRecording begins microphone capture.
func (d *deviceCapability) StartRecording(ctx context.Context) (*Recording, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrCapabilityClosed
	}
	if !d.permission {
		d.mu.Unlock()
		return nil, ErrPermissionDenied
	}
	d.mu.Unlock()

	finalize, err := d.recorder.start()
	if err != nil {
		return nil, err
	}
	return &Recording{finalize: finalize}, nil
}

// StopRecording finalizes the capture. Idempotent.
func (d *deviceCapability) StopRecording(rec *Recording) (Clip, error) {
	if rec == nil {
		return Clip{}, nil
	}
	return rec.stop()
}

// Play starts playback of a clip on the selected engine.
func (d *deviceCapability) Play(ctx context.Context, clip Clip) (*Playback, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrCapabilityClosed
	}
	d.mu.Unlock()

	decoded, err := decodeClip(clip)
	if err != nil {
		return nil, err
	}

	pb := newPlayback(nil)
	halt, err := d.player.play(decoded, pb.complete)
	if err != nil {
		return nil, err
	}
	pb.mu.Lock()
	pb.halt = halt
	pb.mu.Unlock()
	return pb, nil
}

// Stop halts playback. Idempotent.
func (d *deviceCapability) Stop(pb *Playback) error {
	if pb == nil {
		return nil
	}
	pb.stop()
	return nil
}

// Name returns the selected playback engine name.
func (d *deviceCapability) Name() string {
	return d.player.name()
}

// Close releases all engine resources.
func (d *deviceCapability) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.player.close()
	_ = d.ctx.Uninit()
	d.ctx.Free()
	return err
}

// Verify deviceCapability implements Capability at compile time.
var _ Capability = (*deviceCapability)(nil)
