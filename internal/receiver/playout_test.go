// ABOUTME: Tests for the play-out scheduler loop
// ABOUTME: Deadline-order delivery and under-run anchor recovery
package receiver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectSink records written frames without touching audio hardware.
type collectSink struct {
	mu     sync.Mutex
	frames [][]byte
	gain   float64
}

func newCollectSink() *collectSink {
	return &collectSink{gain: 1.0}
}

func (s *collectSink) Write(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := make([]byte, len(pcm))
	copy(frame, pcm)
	s.frames = append(s.frames, frame)
	return nil
}

func (s *collectSink) SetGain(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = gain
}

func (s *collectSink) Gain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

func (s *collectSink) Close() error { return nil }

func (s *collectSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestPlayoutDeliversInDeadlineOrder(t *testing.T) {
	const bufferMs = 30

	buffer := NewPlaybackBuffer(bufferMs)
	sink := newCollectSink()
	stats := &statsCounters{}
	p := newPlayout(buffer, sink, bufferMs, stats, zerolog.Nop())

	// Enough frames to satisfy the pre-roll minimum of 5.
	base := int64(1_000_000_000)
	for i := 0; i < 6; i++ {
		buffer.Insert(base+int64(i)*10_000_000, uint32(i+1), []byte{byte(i + 1)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		p.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return sink.count() == 6
	}, 2*time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	for i, frame := range sink.frames {
		assert.Equal(t, byte(i+1), frame[0])
	}
	sink.mu.Unlock()

	assert.Equal(t, uint64(6), stats.played.Load())

	cancel()
	<-done
}

func TestPlayoutUnderrunClearsAnchors(t *testing.T) {
	const bufferMs = 30

	buffer := NewPlaybackBuffer(bufferMs)
	sink := newCollectSink()
	stats := &statsCounters{}
	p := newPlayout(buffer, sink, bufferMs, stats, zerolog.Nop())

	base := int64(1_000_000_000)
	for i := 0; i < 5; i++ {
		buffer.Insert(base+int64(i)*10_000_000, uint32(i+1), []byte{byte(i + 1)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		p.run(ctx)
		close(done)
	}()

	// First burst drains, then the source goes quiet long enough to push
	// the under-run streak past the reset threshold.
	require.Eventually(t, func() bool {
		return sink.count() == 5
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		buffer.mu.Lock()
		defer buffer.mu.Unlock()
		return !buffer.anchored
	}, 2*time.Second, 5*time.Millisecond, "anchors clear after a prolonged under-run")

	assert.GreaterOrEqual(t, stats.underruns.Load(), uint64(1))

	// Resume: a new burst (with far-future server timestamps) re-anchors
	// and plays after the refill delay.
	resumeBase := int64(900_000_000_000)
	for i := 0; i < 6; i++ {
		buffer.Insert(resumeBase+int64(i)*10_000_000, uint32(100+i), []byte{byte(200 + i)})
	}

	require.Eventually(t, func() bool {
		return sink.count() >= 11
	}, 3*time.Second, 5*time.Millisecond, "playback resumes after re-anchoring")

	cancel()
	<-done
}
