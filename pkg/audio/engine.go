package audio

// player is the playback side of an engine. The two implementations
// have divergent lifecycles: the oto player must be closed after it
// pauses, while the malgo device needs an explicit stop and uninit.
// Both are driven only through this shape.
type player interface {
	// play starts playback of decoded PCM and returns a halt
	// function. onDone is invoked exactly once at natural playback
	// end; it is not invoked after halt.
	play(clip *pcmClip, onDone func()) (halt func(), err error)

	// name returns the engine name.
	name() string

	// close releases engine resources.
	close() error
}
