// ABOUTME: Sender session lifecycle: sockets, keys, fan-out, keep-alive
// ABOUTME: One session per PIN; stopping clears all per-session state
package sender

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RishiIRL/austream-go/internal/app"
	"github.com/RishiIRL/austream-go/internal/audio"
	"github.com/RishiIRL/austream-go/internal/crypto"
	"github.com/RishiIRL/austream-go/internal/protocol"
	"github.com/RishiIRL/austream-go/internal/timesync"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBufferMs is the pre-roll latency suggested to receivers.
	DefaultBufferMs = 50

	// clientTTL is how long a receiver survives without heartbeats.
	clientTTL = 10 * time.Second

	// keepAliveAfter is the idle period before a synthetic silence frame
	// keeps the stream alive.
	keepAliveAfter = 2 * time.Second

	// controlPulse is the control socket read timeout; it paces both
	// heartbeat processing and stale-client reaping.
	controlPulse = 100 * time.Millisecond
)

// FrameSource yields 10ms PCM capture frames. capture.Chunker implements it;
// a real loopback capture adapter does too.
type FrameSource interface {
	ReadFrame() ([]byte, error)
}

// Config configures a sender session.
type Config struct {
	Port             int    // audio/control port; the time socket binds Port+1
	PIN              string // 6 digits; empty generates one
	BufferMs         int    // suggested receiver pre-roll; default 50
	SilenceThreshold int    // silence gate amplitude; default 200
	HostName         string // announced in probe replies; default os.Hostname
}

// Session is one sender lifetime: a PIN/key pair, two sockets, and the set
// of authenticated receivers.
type Session struct {
	id  string
	cfg Config
	log zerolog.Logger

	pin     string
	pinHash string
	key     []byte

	conn       *net.UDPConn
	timeServer *timesync.Server

	clientsMu sync.RWMutex
	clients   map[string]*client

	seq      atomic.Uint32
	lastSent atomic.Int64 // unix nanos of the last emitted datagram

	// emitMu serializes packet build so sequence order matches timestamp
	// order even when keep-alive and capture race.
	emitMu sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSession creates an unstarted session.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Port == 0 {
		cfg.Port = protocol.DefaultAudioPort
	}
	if cfg.BufferMs == 0 {
		cfg.BufferMs = DefaultBufferMs
	}
	if cfg.SilenceThreshold == 0 {
		cfg.SilenceThreshold = audio.DefaultSilenceThreshold
	}
	if cfg.HostName == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.HostName = host
		} else {
			cfg.HostName = "austream"
		}
	}

	pin := cfg.PIN
	if pin == "" {
		var err error
		if pin, err = crypto.GeneratePIN(); err != nil {
			return nil, err
		}
	}
	if len(pin) != 6 {
		return nil, fmt.Errorf("pin must be 6 digits, got %d", len(pin))
	}

	return &Session{
		id:       uuid.New().String(),
		cfg:      cfg,
		log:      app.GetLogger("sender"),
		pin:      pin,
		pinHash:  crypto.HashPIN(pin),
		key:      crypto.DeriveKey(pin),
		clients:  make(map[string]*client),
		stopChan: make(chan struct{}),
	}, nil
}

// Start binds both sockets and launches the control loop, time server, and
// keep-alive ticker. Port collisions surface here.
func (s *Session) Start() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: s.cfg.Port})
	if err != nil {
		return fmt.Errorf("bind audio socket: %w", err)
	}
	s.conn = conn

	timeServer, err := timesync.NewServer(s.cfg.Port + 1)
	if err != nil {
		conn.Close()
		return fmt.Errorf("bind time socket: %w", err)
	}
	s.timeServer = timeServer

	s.lastSent.Store(time.Now().UnixNano())

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.controlLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.keepAliveLoop()
	}()
	go s.timeServer.Run()

	s.log.Info().
		Str("session", s.id).
		Int("port", s.cfg.Port).
		Str("host", s.cfg.HostName).
		Msg("sender session started")

	return nil
}

// Stream pumps the capture source through the silence gate into the fan-out
// until the source ends or the session stops.
func (s *Session) Stream(src FrameSource) error {
	for {
		select {
		case <-s.stopChan:
			return nil
		default:
		}

		frame, err := src.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if audio.IsSilent(frame, s.cfg.SilenceThreshold) {
			continue
		}

		s.emit(frame)
	}
}

// emit frames, encrypts, and fans one PCM frame out to every client queue.
// Fan-out never blocks the capture pipeline.
func (s *Session) emit(frame []byte) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	blob, err := crypto.Encrypt(s.key, frame)
	if err != nil {
		s.log.Warn().Err(err).Msg("encrypt frame")
		return
	}

	pkt := protocol.Packet{
		Seq:       s.seq.Add(1),
		Timestamp: timesync.Nanos(),
		Payload:   blob,
	}
	data := pkt.Encode()

	s.lastSent.Store(time.Now().UnixNano())

	s.clientsMu.RLock()
	for _, c := range s.clients {
		c.offer(data)
	}
	s.clientsMu.RUnlock()
}

// keepAliveLoop emits one synthetic silence frame when nothing has been
// sent for keepAliveAfter while receivers are connected, so heartbeats and
// connectivity survive long idle periods.
func (s *Session) keepAliveLoop() {
	ticker := time.NewTicker(keepAliveAfter / 4)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			idle := time.Since(time.Unix(0, s.lastSent.Load()))
			if idle < keepAliveAfter || s.clientCount() == 0 {
				continue
			}
			s.log.Debug().Dur("idle", idle).Msg("emitting keep-alive frame")
			s.emit(audio.SilenceFrame())
		}
	}
}

func (s *Session) clientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Clients returns a snapshot of the authenticated receivers.
func (s *Session) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	infos := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		infos = append(infos, c.info())
	}
	return infos
}

// PIN returns the session PIN for display next to the pairing string.
func (s *Session) PIN() string {
	return s.pin
}

// Pairing renders the pairing URL for the given advertised IP.
func (s *Session) Pairing(ip string) string {
	return protocol.Pairing{
		Host: ip,
		Port: s.cfg.Port,
		PIN:  s.pin,
		Name: s.cfg.HostName,
	}.String()
}

// Stop cancels all tasks, closes sockets and queues, and clears session
// state. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.conn != nil {
			s.conn.Close()
		}

		// Control loop exits before queues close, so no new client can
		// register while we tear the rest down.
		s.wg.Wait()
		if s.timeServer != nil {
			s.timeServer.Stop()
		}

		s.clientsMu.Lock()
		for key, c := range s.clients {
			delete(s.clients, key)
			close(c.queue)
			<-c.done
		}
		s.clientsMu.Unlock()

		s.seq.Store(0)
		s.key = nil
		s.pinHash = ""

		s.log.Info().Str("session", s.id).Msg("sender session stopped")
	})
}
