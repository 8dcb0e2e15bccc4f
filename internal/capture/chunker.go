// ABOUTME: Turns a capture source into fixed 10ms transport frames
// ABOUTME: Resamples to 48kHz and upmixes mono so every frame is 1920 bytes
package capture

import (
	"fmt"
	"io"

	"github.com/RishiIRL/austream-go/internal/audio"
)

// Chunker adapts a Source to the transport capture-unit: 10ms of 48kHz
// stereo int16 PCM, 1920 bytes per frame. The final partial frame of a
// finite source is zero-padded.
type Chunker struct {
	src      Source
	channels int
	rs       *Resampler // nil when the source is already at 48kHz

	pending []int16 // 48kHz samples in the source channel layout
	srcBuf  []int16
	err     error // sticky; reported once pending drains
}

// NewChunker wraps a source. Only mono and stereo sources are supported.
func NewChunker(src Source) (*Chunker, error) {
	ch := src.Channels()
	if ch != 1 && ch != 2 {
		return nil, fmt.Errorf("unsupported channel count %d", ch)
	}

	c := &Chunker{
		src:      src,
		channels: ch,
		// read the source in 10ms slices
		srcBuf: make([]int16, src.SampleRate()/100*ch),
	}

	if src.SampleRate() != audio.SampleRate {
		c.rs = NewResampler(src.SampleRate(), audio.SampleRate, ch)
	}

	return c, nil
}

// ReadFrame returns the next 1920-byte PCM frame, or io.EOF when the source
// is exhausted.
func (c *Chunker) ReadFrame() ([]byte, error) {
	needed := audio.FrameSamples / audio.Channels * c.channels // 480 frames worth

	for len(c.pending) < needed && c.err == nil {
		c.fill()
	}

	if len(c.pending) == 0 && c.err != nil {
		return nil, c.err
	}

	frame := make([]int16, needed)
	n := copy(frame, c.pending)
	c.pending = c.pending[n:]
	// a short final frame stays zero-padded

	return audio.SamplesToBytes(c.upmix(frame)), nil
}

// fill reads one slice from the source and appends 48kHz samples to pending.
func (c *Chunker) fill() {
	n, err := c.src.Read(c.srcBuf)

	if n > 0 {
		if c.rs == nil {
			c.pending = append(c.pending, c.srcBuf[:n]...)
		} else {
			out := make([]int16, c.outputCap(n))
			m := c.rs.Resample(c.srcBuf[:n], out)
			c.pending = append(c.pending, out[:m]...)
		}
	}

	if err != nil {
		c.err = err
	} else if n == 0 {
		c.err = io.EOF
	}
}

func (c *Chunker) outputCap(inputSamples int) int {
	frames := inputSamples / c.channels
	outFrames := frames*audio.SampleRate/c.src.SampleRate() + 2
	return outFrames * c.channels
}

// upmix converts mono to interleaved stereo; stereo passes through.
func (c *Chunker) upmix(samples []int16) []int16 {
	if c.channels == audio.Channels {
		return samples
	}
	out := make([]int16, len(samples)*2)
	for i, s := range samples {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

// Close closes the underlying source.
func (c *Chunker) Close() error {
	return c.src.Close()
}
