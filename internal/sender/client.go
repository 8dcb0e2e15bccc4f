// ABOUTME: Per-receiver send state on the sender
// ABOUTME: Bounded drop-oldest queue drained by a dedicated goroutine
package sender

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// queueCapacity bounds each client's send queue. Overflow evicts the oldest
// packet so latency stays low during bursts.
const queueCapacity = 50

// client is one authenticated receiver, keyed by the source address of its
// auth datagram.
type client struct {
	addr *net.UDPAddr

	// queue carries encoded datagrams to the drain goroutine. Closed by the
	// control loop on reap or shutdown.
	queue chan []byte

	lastSeen atomic.Int64 // unix nanos
	sent     atomic.Uint64
	dropped  atomic.Uint64

	done chan struct{}
}

// ClientInfo is a snapshot of one receiver for display surfaces.
type ClientInfo struct {
	Addr       string
	LastSeen   time.Time
	QueueDepth int
	Sent       uint64
	Dropped    uint64
}

func newClient(addr *net.UDPAddr) *client {
	c := &client{
		addr:  addr,
		queue: make(chan []byte, queueCapacity),
		done:  make(chan struct{}),
	}
	c.touch()
	return c
}

func (c *client) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *client) stale(maxAge time.Duration) bool {
	return time.Since(time.Unix(0, c.lastSeen.Load())) > maxAge
}

// offer enqueues a datagram without blocking. When the queue is full the
// oldest entry is evicted first; the newest packet always wins.
func (c *client) offer(data []byte) {
	select {
	case c.queue <- data:
		return
	default:
	}

	// Full: evict the head, then retry once. The drain goroutine may have
	// raced us to the head, in which case the retry succeeds directly.
	select {
	case <-c.queue:
		c.dropped.Add(1)
	default:
	}

	select {
	case c.queue <- data:
	default:
		c.dropped.Add(1)
	}
}

// drain sends queued datagrams until the queue is closed. Send errors drop
// the packet; the client is only removed when heartbeats lapse.
func (c *client) drain(conn *net.UDPConn, log zerolog.Logger) {
	defer close(c.done)

	for data := range c.queue {
		if _, err := conn.WriteToUDP(data, c.addr); err != nil {
			log.Debug().Err(err).Stringer("peer", c.addr).Msg("audio send")
			continue
		}
		c.sent.Add(1)
	}
}

func (c *client) info() ClientInfo {
	return ClientInfo{
		Addr:       c.addr.String(),
		LastSeen:   time.Unix(0, c.lastSeen.Load()),
		QueueDepth: len(c.queue),
		Sent:       c.sent.Load(),
		Dropped:    c.dropped.Load(),
	}
}
