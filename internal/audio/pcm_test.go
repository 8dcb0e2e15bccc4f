// ABOUTME: Tests for PCM conversions, gain, and silence detection
// ABOUTME: Includes the float capture clamp and gate threshold edges
package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameConstants(t *testing.T) {
	assert.Equal(t, 1920, FrameSize)
	assert.Equal(t, 960, FrameSamples)
}

func TestBytesSamplesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345, -12345}

	got := BytesToSamples(SamplesToBytes(samples))
	assert.Equal(t, samples, got)
}

func TestFloat32ToPCM16(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1.0, -1.0, 2.0, -2.0}
	out := BytesToSamples(Float32ToPCM16(in))

	require.Len(t, out, len(in))
	assert.Equal(t, int16(0), out[0])
	assert.Equal(t, int16(16383), out[1])
	assert.Equal(t, int16(-16383), out[2])
	assert.Equal(t, int16(32767), out[3])
	assert.Equal(t, int16(-32767), out[4])
	assert.Equal(t, int16(32767), out[5], "overrange clamps high")
	assert.Equal(t, int16(-32768), out[6], "overrange clamps low")
}

func TestApplyGain(t *testing.T) {
	samples := []int16{1000, -1000, 32767}
	ApplyGain(samples, 0.5)
	assert.Equal(t, []int16{500, -500, 16383}, samples)

	samples = []int16{1000, -1000}
	ApplyGain(samples, 0)
	assert.Equal(t, []int16{0, 0}, samples)

	samples = []int16{1000, -1000}
	ApplyGain(samples, 1.0)
	assert.Equal(t, []int16{1000, -1000}, samples)
}

func TestIsSilentAllQuiet(t *testing.T) {
	samples := make([]int16, FrameSamples)
	for i := range samples {
		samples[i] = 200 // exactly at threshold counts as silent
		if i%2 == 0 {
			samples[i] = -200
		}
	}
	assert.True(t, IsSilent(SamplesToBytes(samples), DefaultSilenceThreshold))
}

func TestIsSilentLoudSample(t *testing.T) {
	samples := make([]int16, FrameSamples)
	samples[0] = 201
	assert.False(t, IsSilent(SamplesToBytes(samples), DefaultSilenceThreshold))

	samples = make([]int16, FrameSamples)
	samples[477] = -5000 // loud sample mid-frame lands on a probe
	assert.False(t, IsSilent(SamplesToBytes(samples), DefaultSilenceThreshold))
}

func TestIsSilentEmptyAndZero(t *testing.T) {
	assert.True(t, IsSilent(nil, DefaultSilenceThreshold))
	assert.True(t, IsSilent(SilenceFrame(), DefaultSilenceThreshold))
}
