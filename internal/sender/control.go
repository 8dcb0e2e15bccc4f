// ABOUTME: Control plane on the shared audio/control socket
// ABOUTME: Probe, auth, heartbeat handling and stale-client reaping
package sender

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/RishiIRL/austream-go/internal/protocol"
)

// controlLoop reads the shared socket with a short timeout so heartbeat
// processing and reaping progress even when no datagrams arrive.
func (s *Session) controlLoop() {
	buf := make([]byte, protocol.MaxDatagramSize)

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(controlPulse))
		n, addr, err := s.conn.ReadFromUDP(buf)

		s.reapStale()

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-s.stopChan:
				return
			default:
			}
			s.log.Debug().Err(err).Msg("control socket read")
			continue
		}

		if !protocol.IsControl(buf[:n]) {
			continue
		}

		s.handleControl(string(buf[:n]), addr)
	}
}

func (s *Session) handleControl(msg string, addr *net.UDPAddr) {
	switch {
	case msg == protocol.MsgProbe:
		s.reply(protocol.MsgAlive+s.cfg.HostName, addr)

	case strings.HasPrefix(msg, protocol.MsgAuth):
		s.handleAuth(msg, addr)

	case msg == protocol.MsgHeartbeat:
		s.clientsMu.RLock()
		c, ok := s.clients[addr.String()]
		s.clientsMu.RUnlock()
		if ok {
			c.touch()
		}

	case strings.HasPrefix(msg, protocol.MsgLegacyClient):
		// Old clients joined without a PIN; tell them to upgrade.
		s.reply(protocol.MsgNeedPIN, addr)

	default:
		s.log.Debug().Str("msg", msg).Stringer("peer", addr).Msg("unknown control message")
	}
}

// handleAuth verifies the PIN hash and registers (or replaces) the client,
// starting its dedicated send task.
func (s *Session) handleAuth(msg string, addr *net.UDPAddr) {
	pinHash, ok := protocol.ParseAuth(msg)
	if !ok || pinHash != s.pinHash {
		s.log.Info().Stringer("peer", addr).Msg("auth rejected")
		s.reply(protocol.MsgFail, addr)
		return
	}

	key := addr.String()

	s.clientsMu.Lock()
	if old, exists := s.clients[key]; exists {
		delete(s.clients, key)
		close(old.queue)
		<-old.done // one send task per client at a time
	}
	c := newClient(addr)
	s.clients[key] = c
	s.clientsMu.Unlock()

	go c.drain(s.conn, s.log)

	s.log.Info().Stringer("peer", addr).Msg("receiver authenticated")
	s.reply(protocol.MsgOK+strconv.Itoa(s.cfg.BufferMs), addr)
}

// reapStale removes clients whose heartbeats lapsed, cancelling their send
// tasks and closing their queues.
func (s *Session) reapStale() {
	s.clientsMu.Lock()
	for key, c := range s.clients {
		if c.stale(clientTTL) {
			delete(s.clients, key)
			close(c.queue)
			s.log.Info().Str("peer", key).Msg("reaping stale receiver")
		}
	}
	s.clientsMu.Unlock()
}

func (s *Session) reply(msg string, addr *net.UDPAddr) {
	if _, err := s.conn.WriteToUDP([]byte(msg), addr); err != nil {
		s.log.Debug().Err(err).Stringer("peer", addr).Msg("control reply send")
	}
}
