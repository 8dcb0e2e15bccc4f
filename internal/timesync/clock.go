// ABOUTME: Receiver-side clock state from NTP 4-timestamp exchanges
// ABOUTME: Atomic offset/rtt pair read by telemetry, written by the sync loop
package timesync

import (
	"sync/atomic"
	"time"
)

// Clock holds the latest clock-offset measurement against the sender. The
// offset is telemetry: play-out deadlines use anchor deltas, not converted
// absolute times.
type Clock struct {
	offset   atomic.Int64 // sender minus receiver, nanoseconds
	rtt      atomic.Int64 // round trip, nanoseconds
	samples  atomic.Int64
	lastSync atomic.Int64 // Unix nanos of the last accepted sample
}

// NewClock creates an unsynchronized clock.
func NewClock() *Clock {
	return &Clock{}
}

// Process ingests one completed exchange. t1 and t4 are the receiver's
// monotonic send/receive times, t2 and t3 the sender's.
func (c *Clock) Process(t1, t2, t3, t4 int64) {
	offset := ((t2 - t1) + (t3 - t4)) / 2
	rtt := (t4 - t1) - (t3 - t2)

	c.offset.Store(offset)
	c.rtt.Store(rtt)
	c.samples.Add(1)
	c.lastSync.Store(time.Now().UnixNano())
}

// Offset returns the latest sender-minus-receiver offset in nanoseconds.
func (c *Clock) Offset() int64 {
	return c.offset.Load()
}

// RTT returns the latest round-trip time in nanoseconds.
func (c *Clock) RTT() int64 {
	return c.rtt.Load()
}

// Synced reports whether at least one exchange has completed.
func (c *Clock) Synced() bool {
	return c.samples.Load() > 0
}

// Age returns the time since the last accepted sample, or a very large
// duration when never synced.
func (c *Clock) Age() time.Duration {
	last := c.lastSync.Load()
	if last == 0 {
		return time.Duration(1<<63 - 1)
	}
	return time.Since(time.Unix(0, last))
}
