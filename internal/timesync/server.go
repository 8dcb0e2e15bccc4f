// ABOUTME: Stateless clock-sync responder on the sender's time socket
// ABOUTME: Echoes t1 and stamps t2/t3; keeps a soft recently-active set
package timesync

import (
	"net"
	"sync"
	"time"

	"github.com/RishiIRL/austream-go/internal/app"
)

const (
	readPulse     = 100 * time.Millisecond
	activeTTL     = 60 * time.Second
	pruneInterval = 30 * time.Second
)

// Server answers clock-sync requests. It keeps no per-client protocol state;
// the recently-active set exists only for telemetry.
type Server struct {
	conn *net.UDPConn

	activeMu  sync.Mutex
	active    map[string]time.Time
	lastPrune time.Time

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewServer binds the time socket on the given port.
func NewServer(port int) (*Server, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}

	return &Server{
		conn:      conn,
		active:    make(map[string]time.Time),
		lastPrune: time.Now(),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}, nil
}

// Run serves requests until Stop. The short read deadline keeps pruning and
// shutdown responsive.
func (s *Server) Run() {
	log := app.GetLogger("timesync")
	log.Info().Stringer("addr", s.conn.LocalAddr()).Msg("time server listening")

	defer close(s.doneChan)

	buf := make([]byte, 64)
	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(readPulse))
		n, addr, err := s.conn.ReadFromUDP(buf)

		if now := time.Now(); now.Sub(s.lastPrune) >= pruneInterval {
			s.prune(now)
		}

		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-s.stopChan:
				return
			default:
			}
			log.Debug().Err(err).Msg("time socket read")
			continue
		}

		t2 := Nanos()

		t1, err := DecodeRequest(buf[:n])
		if err != nil {
			log.Debug().Int("len", n).Msg("dropping malformed sync request")
			continue
		}

		s.activeMu.Lock()
		s.active[addr.String()] = time.Now()
		s.activeMu.Unlock()

		resp := EncodeResponse(t1, t2, Nanos())
		if _, err := s.conn.WriteToUDP(resp, addr); err != nil {
			log.Debug().Err(err).Stringer("peer", addr).Msg("sync reply send")
		}
	}
}

func (s *Server) prune(now time.Time) {
	s.activeMu.Lock()
	for addr, seen := range s.active {
		if now.Sub(seen) > activeTTL {
			delete(s.active, addr)
		}
	}
	s.activeMu.Unlock()
	s.lastPrune = now
}

// ActiveCount returns the size of the recently-active set. Entries older
// than a minute are pruned every 30 seconds, so a peer can stay counted for
// up to about 90 seconds after its last sync.
func (s *Server) ActiveCount() int {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return len(s.active)
}

// Port returns the bound UDP port.
func (s *Server) Port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

// Stop shuts the server down and waits for the loop to exit.
func (s *Server) Stop() {
	close(s.stopChan)
	s.conn.Close()
	<-s.doneChan
}
