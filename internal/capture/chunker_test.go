// ABOUTME: Tests for the frame chunker and resampler
// ABOUTME: Uses in-memory sources at various rates and channel layouts
package capture

import (
	"io"
	"testing"

	"github.com/RishiIRL/austream-go/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource plays a fixed sample slice once.
type memSource struct {
	samples    []int16
	pos        int
	sampleRate int
	channels   int
}

func (m *memSource) Read(samples []int16) (int, error) {
	if m.pos >= len(m.samples) {
		return 0, io.EOF
	}
	n := copy(samples, m.samples[m.pos:])
	m.pos += n
	return n, nil
}

func (m *memSource) SampleRate() int { return m.sampleRate }
func (m *memSource) Channels() int   { return m.channels }
func (m *memSource) Metadata() (string, string, string) {
	return "mem", "", ""
}
func (m *memSource) Close() error { return nil }

func TestChunkerNativeStereo(t *testing.T) {
	// One second of ramp samples at the transport format.
	samples := make([]int16, audio.SampleRate*2)
	for i := range samples {
		samples[i] = int16(i)
	}

	c, err := NewChunker(&memSource{samples: samples, sampleRate: 48000, channels: 2})
	require.NoError(t, err)

	frames := 0
	for {
		frame, err := c.ReadFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Len(t, frame, audio.FrameSize)
		frames++
	}

	assert.Equal(t, 100, frames, "1s of audio is 100 frames of 10ms")
}

func TestChunkerZeroPadsFinalFrame(t *testing.T) {
	// Half a frame of audio.
	samples := make([]int16, audio.FrameSamples/2)
	for i := range samples {
		samples[i] = 1000
	}

	c, err := NewChunker(&memSource{samples: samples, sampleRate: 48000, channels: 2})
	require.NoError(t, err)

	frame, err := c.ReadFrame()
	require.NoError(t, err)
	require.Len(t, frame, audio.FrameSize)

	decoded := audio.BytesToSamples(frame)
	assert.Equal(t, int16(1000), decoded[0])
	assert.Equal(t, int16(0), decoded[len(decoded)-1], "tail is zero padded")

	_, err = c.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChunkerUpmixesMono(t *testing.T) {
	samples := make([]int16, audio.FrameSamples/2) // 480 mono frames
	for i := range samples {
		samples[i] = int16(i + 1)
	}

	c, err := NewChunker(&memSource{samples: samples, sampleRate: 48000, channels: 1})
	require.NoError(t, err)

	frame, err := c.ReadFrame()
	require.NoError(t, err)
	require.Len(t, frame, audio.FrameSize)

	decoded := audio.BytesToSamples(frame)
	assert.Equal(t, decoded[0], decoded[1], "mono duplicates into both channels")
	assert.Equal(t, int16(1), decoded[0])
	assert.Equal(t, int16(2), decoded[2])
}

func TestChunkerResamples(t *testing.T) {
	// 1s of 44.1kHz stereo comes out near 100 frames at 48kHz.
	samples := make([]int16, 44100*2)
	c, err := NewChunker(&memSource{samples: samples, sampleRate: 44100, channels: 2})
	require.NoError(t, err)

	frames := 0
	for {
		frame, err := c.ReadFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Len(t, frame, audio.FrameSize)
		frames++
	}

	assert.InDelta(t, 100, frames, 2)
}

func TestChunkerRejectsOddChannels(t *testing.T) {
	_, err := NewChunker(&memSource{sampleRate: 48000, channels: 6})
	assert.Error(t, err)
}

func TestResamplerIdentityRatio(t *testing.T) {
	rs := NewResampler(48000, 48000, 2)

	in := []int16{0, 0, 100, 100, 200, 200, 300, 300}
	out := make([]int16, len(in))

	n := rs.Resample(in, out)
	// The last frame is interpolation fence post; all produced samples match.
	require.Greater(t, n, 0)
	for i := 0; i < n; i++ {
		assert.Equal(t, in[i], out[i])
	}
}

func TestResamplerDownsamples(t *testing.T) {
	rs := NewResampler(96000, 48000, 1)

	in := make([]int16, 960)
	for i := range in {
		in[i] = int16(i)
	}
	out := make([]int16, 960)

	n := rs.Resample(in, out)
	assert.InDelta(t, 480, n, 2)
	assert.Equal(t, int16(0), out[0])
	assert.Equal(t, int16(2), out[1], "every other sample at 2:1")
}

func TestToneSourceLoudAndEndless(t *testing.T) {
	tone := NewToneSource()

	samples := make([]int16, audio.FrameSamples)
	n, err := tone.Read(samples)
	require.NoError(t, err)
	require.Equal(t, audio.FrameSamples, n)

	peak := int16(0)
	for _, s := range samples {
		if s > peak {
			peak = s
		}
	}
	assert.Greater(t, peak, int16(10000), "tone is well above the silence gate")
}
