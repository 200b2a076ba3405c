package audio

import (
	"encoding/binary"
	"fmt"
)

// Capture format for microphone clips. 16 kHz mono PCM16 is what the
// transcription endpoint expects for speech.
const (
	captureSampleRate = 16000
	captureChannels   = 1
	captureBitDepth   = 16
)

// encodeWAV wraps raw PCM16 little-endian samples in a WAV container.
// The transcription endpoint needs a recognizable container, and the
// 44-byte canonical header is all that takes.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * captureBitDepth / 8
	blockAlign := channels * captureBitDepth / 8

	buf := make([]byte, 44+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], captureBitDepth)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[44:], pcm)
	return buf
}

// parseWAV extracts PCM16 samples and format parameters from a WAV
// container. Only canonical PCM files are supported.
func parseWAV(data []byte) (pcm []byte, sampleRate, channels int, err error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("not a WAV file")
	}

	channels = int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate = int(binary.LittleEndian.Uint32(data[24:28]))
	if channels == 0 || sampleRate == 0 {
		return nil, 0, 0, fmt.Errorf("invalid WAV format chunk")
	}

	// Walk chunks to find "data": some encoders insert LIST chunks
	// between fmt and data.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		if id == "data" {
			end := offset + 8 + size
			if end > len(data) {
				end = len(data)
			}
			return data[offset+8 : end], sampleRate, channels, nil
		}
		offset += 8 + size
		if size%2 == 1 {
			offset++
		}
	}
	return nil, 0, 0, fmt.Errorf("WAV data chunk not found")
}
