package audio

import (
	"bytes"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// pcmClip is decoded audio ready for a PCM engine.
type pcmClip struct {
	data       []byte // PCM16 little-endian, interleaved
	sampleRate int
	channels   int
}

// decodeClip converts a clip into raw PCM16 for the playback engines.
// MP3 decodes to 16-bit stereo at the stream's sample rate; WAV passes
// its samples through.
func decodeClip(clip Clip) (*pcmClip, error) {
	switch clip.Format {
	case "mp3":
		dec, err := mp3.NewDecoder(bytes.NewReader(clip.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: mp3 decode: %v", ErrUnsupportedFormat, err)
		}
		pcm, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: mp3 read: %v", ErrUnsupportedFormat, err)
		}
		return &pcmClip{
			data:       pcm,
			sampleRate: dec.SampleRate(),
			channels:   2, // go-mp3 always emits stereo
		}, nil

	case "wav":
		pcm, rate, channels, err := parseWAV(clip.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return &pcmClip{data: pcm, sampleRate: rate, channels: channels}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, clip.Format)
	}
}
