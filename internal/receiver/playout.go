// ABOUTME: Play-out scheduler popping frames at their local deadlines
// ABOUTME: Pre-rolls before starting and escalates through under-run recovery
package receiver

import (
	"context"
	"time"

	"github.com/RishiIRL/austream-go/internal/player"
	"github.com/RishiIRL/austream-go/internal/timesync"
	"github.com/rs/zerolog"
)

const (
	// prerollCap bounds the initial buffering wait.
	prerollCap = 3 * time.Second

	// refillCap bounds the wait for packets after an anchor reset.
	refillCap = 5 * time.Second

	// maxSleep keeps the scheduler responsive to newly arrived earlier
	// deadlines.
	maxSleep = 10 * time.Millisecond
	minSleep = 1 * time.Millisecond
)

// playout pops buffered frames when their deadlines arrive and writes them
// to the sink.
type playout struct {
	buffer   *PlaybackBuffer
	sink     player.Sink
	bufferMs int
	minFill  int
	stats    *statsCounters
	log      zerolog.Logger
}

func newPlayout(buffer *PlaybackBuffer, sink player.Sink, bufferMs int, stats *statsCounters, log zerolog.Logger) *playout {
	minFill := bufferMs / 10
	if minFill < 5 {
		minFill = 5
	}

	return &playout{
		buffer:   buffer,
		sink:     sink,
		bufferMs: bufferMs,
		minFill:  minFill,
		stats:    stats,
		log:      log,
	}
}

func (p *playout) run(ctx context.Context) {
	p.waitBuffered(ctx, time.Duration(p.bufferMs)*time.Millisecond, prerollCap)

	streak := 0

	for ctx.Err() == nil {
		deadline, ok := p.buffer.Peek()
		if !ok {
			streak++
			if streak == 1 {
				p.stats.underruns.Add(1)
			}

			switch {
			case streak < 10:
				sleepCtx(ctx, 2*time.Millisecond)
			case streak < 30:
				sleepCtx(ctx, 5*time.Millisecond)
			default:
				// The stream paused. Drop the anchors so the next packet
				// re-anchors, refill, then rebuild the pre-roll lead.
				p.log.Debug().Int("streak", streak).Msg("stream paused, re-anchoring")
				p.buffer.Reset()
				p.waitBuffered(ctx, 0, refillCap)
				sleepCtx(ctx, time.Duration(p.bufferMs)*time.Millisecond)
				streak = 0
			}
			continue
		}

		now := timesync.Nanos()
		if now >= deadline {
			e, ok := p.buffer.Pop()
			if !ok {
				continue
			}
			if err := p.sink.Write(e.pcm); err != nil {
				p.log.Debug().Err(err).Uint32("seq", e.seq).Msg("sink write")
			}
			p.stats.played.Add(1)
			streak = 0
			continue
		}

		d := time.Duration(deadline - now)
		if d > maxSleep {
			d = maxSleep
		} else if d < minSleep {
			d = minSleep
		}
		sleepCtx(ctx, d)
	}
}

// waitBuffered blocks until minFill frames are buffered and minElapsed has
// passed, or limit expires, or the context ends.
func (p *playout) waitBuffered(ctx context.Context, minElapsed, limit time.Duration) {
	start := time.Now()

	for ctx.Err() == nil {
		elapsed := time.Since(start)
		if p.buffer.Len() >= p.minFill && elapsed >= minElapsed {
			return
		}
		if elapsed >= limit {
			return
		}
		sleepCtx(ctx, 10*time.Millisecond)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
