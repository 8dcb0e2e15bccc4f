// ABOUTME: Single-reply sender probe for pairing bootstrap
// ABOUTME: Sends AUSTREAM_PROBE and returns the announced host name
package receiver

import (
	"fmt"
	"net"
	"time"

	"github.com/RishiIRL/austream-go/internal/protocol"
)

// Probe asks the sender at addr to identify itself. Returns the host name
// from its AUSTREAM_ALIVE reply.
func Probe(addr string, timeout time.Duration) (string, error) {
	conn, err := net.Dial("udp4", addr)
	if err != nil {
		return "", fmt.Errorf("dial sender: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(protocol.MsgProbe)); err != nil {
		return "", fmt.Errorf("send probe: %w", err)
	}

	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("probe reply: %w", err)
	}

	host, ok := protocol.ParseAlive(string(buf[:n]))
	if !ok {
		return "", fmt.Errorf("unexpected probe reply %q", string(buf[:n]))
	}
	return host, nil
}
