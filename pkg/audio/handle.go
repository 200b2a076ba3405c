package audio

import "sync"

// Recording is the owned handle for an in-flight capture.
// It is created by StartRecording and must be released through
// StopRecording before the owning phase transitions away.
type Recording struct {
	mu      sync.Mutex
	stopped bool
	clip    Clip

	// finalize is set by the engine; it halts the capture device and
	// returns the finalized clip. Called at most once.
	finalize func() (Clip, error)
}

// stop runs the engine finalizer exactly once. Subsequent calls return
// the cached clip.
func (r *Recording) stop() (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return r.clip, nil
	}
	r.stopped = true

	if r.finalize == nil {
		return r.clip, nil
	}
	clip, err := r.finalize()
	if err != nil {
		return Clip{}, err
	}
	r.clip = clip
	return clip, nil
}

// Stopped reports whether the recording has been finalized.
func (r *Recording) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Playback is the owned handle for in-flight playback.
type Playback struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	doneOnc sync.Once

	// halt is set by the engine; it stops the underlying player and
	// releases its resources. Called at most once.
	halt func()
}

func newPlayback(halt func()) *Playback {
	return &Playback{
		done: make(chan struct{}),
		halt: halt,
	}
}

// Done returns a channel closed exactly once when natural playback end
// is reached. It is never closed by a manual Stop.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// complete is invoked by the engine at natural playback end.
// A handle that was manually stopped stays silent.
func (p *Playback) complete() {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return
	}
	p.doneOnc.Do(func() { close(p.done) })
}

// stop halts the engine player exactly once.
func (p *Playback) stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	halt := p.halt
	p.mu.Unlock()

	if halt != nil {
		halt()
	}
}

// Stopped reports whether playback was manually stopped.
func (p *Playback) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}
