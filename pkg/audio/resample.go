package audio

// Resample converts audio from one sample rate to another using linear
// interpolation. Good enough for speech; playback engines use it to
// match a clip to the device format.
func Resample(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	newLen := int(float64(len(samples)) / ratio)
	if newLen == 0 {
		return []int16{}
	}

	result := make([]int16, newLen)
	for i := 0; i < newLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		if srcIdx >= len(samples)-1 {
			result[i] = samples[len(samples)-1]
		} else {
			s1 := float64(samples[srcIdx])
			s2 := float64(samples[srcIdx+1])
			result[i] = int16(s1 + frac*(s2-s1))
		}
	}
	return result
}

// BytesToSamples converts raw PCM16 little-endian bytes to int16 samples.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}

// SamplesToBytes converts int16 samples to raw PCM16 little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

// MonoToStereo duplicates mono samples into interleaved stereo.
func MonoToStereo(samples []int16) []int16 {
	stereo := make([]int16, len(samples)*2)
	for i, s := range samples {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}
	return stereo
}

// conform adapts decoded PCM to the target device rate and channel
// count. Stereo streams are resampled per channel to keep interleaving
// intact.
func (c *pcmClip) conform(rate, channels int) []byte {
	samples := BytesToSamples(c.data)

	if c.sampleRate != rate {
		if c.channels == 2 {
			left := make([]int16, 0, len(samples)/2)
			right := make([]int16, 0, len(samples)/2)
			for i := 0; i+1 < len(samples); i += 2 {
				left = append(left, samples[i])
				right = append(right, samples[i+1])
			}
			left = Resample(left, c.sampleRate, rate)
			right = Resample(right, c.sampleRate, rate)
			samples = make([]int16, len(left)*2)
			for i := range left {
				samples[i*2] = left[i]
				samples[i*2+1] = right[i]
			}
		} else {
			samples = Resample(samples, c.sampleRate, rate)
		}
	}

	if c.channels == 1 && channels == 2 {
		samples = MonoToStereo(samples)
	}
	return SamplesToBytes(samples)
}
