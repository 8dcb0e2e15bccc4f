// ABOUTME: PCM frame format constants and byte/sample conversions
// ABOUTME: Fixed capture format: 48kHz stereo signed 16-bit little-endian
package audio

import "encoding/binary"

const (
	SampleRate = 48000
	Channels   = 2
	BitDepth   = 16

	// FrameDurationMs is the capture unit length.
	FrameDurationMs = 10

	// FrameSamples is interleaved samples per frame (both channels).
	FrameSamples = SampleRate * FrameDurationMs / 1000 * Channels

	// FrameSize is bytes per frame: 480 frames x 2 channels x 2 bytes.
	FrameSize = FrameSamples * BitDepth / 8
)

// BytesToSamples converts little-endian PCM bytes to int16 samples. A
// trailing odd byte is ignored.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// SamplesToBytes converts int16 samples to little-endian PCM bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// Float32ToPCM16 converts 32-bit float samples from an OS capture into
// little-endian int16 PCM: clamp(f*32767, -32768, 32767) per sample.
func Float32ToPCM16(samples []float32) []byte {
	data := make([]byte, len(samples)*2)
	for i, f := range samples {
		v := f * 32767.0
		if v > 32767.0 {
			v = 32767.0
		} else if v < -32768.0 {
			v = -32768.0
		}
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(v)))
	}
	return data
}

// ApplyGain scales samples in place by a linear gain clamped to [0,1].
func ApplyGain(samples []int16, gain float64) {
	if gain >= 1.0 {
		return
	}
	if gain < 0 {
		gain = 0
	}
	for i, s := range samples {
		samples[i] = int16(float64(s) * gain)
	}
}

// SilenceFrame returns one all-zero PCM frame. Keep-alive packets carry it
// during long idle periods.
func SilenceFrame() []byte {
	return make([]byte, FrameSize)
}
