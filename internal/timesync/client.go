// ABOUTME: Receiver-side clock-sync loop against the sender's time socket
// ABOUTME: One exchange every 2s with a 1s reply timeout; drops retry silently
package timesync

import (
	"context"
	"net"
	"time"

	"github.com/RishiIRL/austream-go/internal/app"
	"github.com/rs/zerolog"
)

const (
	// SyncInterval is the cadence of sync exchanges.
	SyncInterval = 2 * time.Second

	// replyTimeout bounds the wait for one response.
	replyTimeout = 1 * time.Second
)

// Client runs the periodic clock-sync exchange and feeds a Clock.
type Client struct {
	clock *Clock
	conn  *net.UDPConn
}

// NewClient connects a sync client to the sender's time endpoint.
func NewClient(serverAddr string, clock *Clock) (*Client, error) {
	addr, err := net.ResolveUDPAddr("udp4", serverAddr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, err
	}

	return &Client{clock: clock, conn: conn}, nil
}

// Run performs one exchange immediately, then one per interval until the
// context is cancelled. A lost reply is retried on the next tick.
func (c *Client) Run(ctx context.Context) {
	log := app.GetLogger("timesync")

	c.syncOnce(log)

	ticker := time.NewTicker(SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.syncOnce(log)
		}
	}
}

func (c *Client) syncOnce(log zerolog.Logger) {
	t1 := Nanos()

	if _, err := c.conn.Write(EncodeRequest(t1)); err != nil {
		log.Debug().Err(err).Msg("sync request send")
		return
	}

	buf := make([]byte, 64)
	c.conn.SetReadDeadline(time.Now().Add(replyTimeout))
	n, err := c.conn.Read(buf)
	t4 := Nanos()
	if err != nil {
		log.Debug().Err(err).Msg("sync reply wait")
		return
	}

	t1Echo, t2, t3, err := DecodeResponse(buf[:n])
	if err != nil || t1Echo != t1 {
		log.Debug().Msg("dropping stale or malformed sync reply")
		return
	}

	c.clock.Process(t1Echo, t2, t3, t4)
}

// Close releases the socket.
func (c *Client) Close() error {
	return c.conn.Close()
}
