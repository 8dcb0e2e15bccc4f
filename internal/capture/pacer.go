// ABOUTME: Real-time pacing for non-blocking frame sources
// ABOUTME: Releases one 10ms frame per tick so file sources play at speed
package capture

import (
	"time"

	"github.com/RishiIRL/austream-go/internal/audio"
)

// FrameReader yields fixed-size PCM frames. Chunker implements it.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// Pacer throttles a frame reader to real time. Hardware captures block on
// the device and need no pacing; file and tone sources read instantly and
// would otherwise flood the pipeline.
type Pacer struct {
	src    FrameReader
	ticker *time.Ticker
}

// NewPacer wraps a frame reader with a 10ms cadence.
func NewPacer(src FrameReader) *Pacer {
	return &Pacer{
		src:    src,
		ticker: time.NewTicker(audio.FrameDurationMs * time.Millisecond),
	}
}

// ReadFrame waits for the next tick, then reads one frame.
func (p *Pacer) ReadFrame() ([]byte, error) {
	<-p.ticker.C
	return p.src.ReadFrame()
}

// Close stops the ticker; the underlying source is closed by its owner.
func (p *Pacer) Close() error {
	p.ticker.Stop()
	return nil
}
