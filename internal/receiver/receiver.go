// ABOUTME: Receiver session: handshake, heartbeats, and component wiring
// ABOUTME: Authenticates against a sender and drives ingress plus play-out
package receiver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/RishiIRL/austream-go/internal/app"
	"github.com/RishiIRL/austream-go/internal/crypto"
	"github.com/RishiIRL/austream-go/internal/player"
	"github.com/RishiIRL/austream-go/internal/protocol"
	"github.com/RishiIRL/austream-go/internal/timesync"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the receiver-visible connection state.
type State int

const (
	StateNotAuthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateFailed
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateNotAuthenticated:
		return "not_authenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

const (
	// handshakeTimeout bounds the auth reply wait.
	handshakeTimeout = 3 * time.Second

	// streamReadPulse is the receive loop's read timeout.
	streamReadPulse = 100 * time.Millisecond

	// heartbeatInterval keeps the sender's last-seen fresh.
	heartbeatInterval = 5 * time.Second
)

// Config configures a receiver.
type Config struct {
	ServerAddr string // sender's audio endpoint, host:port
	PIN        string
	Sink       player.Sink
}

// Stats is a snapshot of receive-side counters and clock telemetry.
type Stats struct {
	Received      uint64
	Lost          uint64
	DecryptErrors uint64
	Played        uint64
	Underruns     uint64
	OffsetNs      int64
	RTTNs         int64
}

// Receiver authenticates against one sender and plays its stream.
type Receiver struct {
	id  string
	cfg Config
	log zerolog.Logger

	key  []byte
	conn *net.UDPConn

	clock      *timesync.Clock
	syncClient *timesync.Client

	buffer  *PlaybackBuffer
	playout *playout

	bufferMs int

	stateMu    sync.Mutex
	state      State
	failReason string

	stats statsCounters

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an unconnected receiver.
func New(cfg Config) *Receiver {
	ctx, cancel := context.WithCancel(context.Background())

	return &Receiver{
		id:     uuid.New().String(),
		cfg:    cfg,
		log:    app.GetLogger("receiver"),
		key:    crypto.DeriveKey(cfg.PIN),
		clock:  timesync.NewClock(),
		state:  StateNotAuthenticated,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect performs the authentication handshake. On success the receiver is
// Authenticated and ready to Start; any failure leaves it Failed with a
// reason.
func (r *Receiver) Connect() error {
	r.setState(StateAuthenticating, "")

	addr, err := net.ResolveUDPAddr("udp4", r.cfg.ServerAddr)
	if err != nil {
		return r.fail(fmt.Sprintf("resolve server: %v", err))
	}

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return r.fail(fmt.Sprintf("dial server: %v", err))
	}
	r.conn = conn

	authMsg := protocol.MsgAuth + crypto.HashPIN(r.cfg.PIN)
	if _, err := conn.Write([]byte(authMsg)); err != nil {
		return r.fail(fmt.Sprintf("send auth: %v", err))
	}

	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	n, err := conn.Read(buf)
	if err != nil {
		return r.fail(fmt.Sprintf("auth reply: %v", err))
	}

	reply := string(buf[:n])
	switch {
	case strings.HasPrefix(reply, protocol.MsgOK):
		ms, ok := protocol.ParseOK(reply)
		if !ok {
			return r.fail("Unknown response")
		}
		r.bufferMs = ms

	case reply == protocol.MsgFail:
		return r.fail("Invalid PIN")

	default:
		return r.fail("Unknown response")
	}

	r.buffer = NewPlaybackBuffer(r.bufferMs)
	r.playout = newPlayout(r.buffer, r.cfg.Sink, r.bufferMs, &r.stats, r.log)

	r.setState(StateAuthenticated, "")
	r.log.Info().
		Str("receiver", r.id).
		Str("server", r.cfg.ServerAddr).
		Int("buffer_ms", r.bufferMs).
		Msg("authenticated")

	return nil
}

// Start launches the heartbeat, receive, play-out, and clock-sync loops.
// Connect must have succeeded first.
func (r *Receiver) Start() error {
	if st, _ := r.State(); st != StateAuthenticated {
		return fmt.Errorf("receiver not authenticated")
	}

	syncClient, err := timesync.NewClient(r.timeAddr(), r.clock)
	if err != nil {
		return fmt.Errorf("connect time socket: %w", err)
	}
	r.syncClient = syncClient

	r.wg.Add(3)
	go func() {
		defer r.wg.Done()
		r.heartbeatLoop()
	}()
	go func() {
		defer r.wg.Done()
		r.receiveLoop()
	}()
	go func() {
		defer r.wg.Done()
		r.playout.run(r.ctx)
	}()

	go r.syncClient.Run(r.ctx)

	return nil
}

// timeAddr derives the sender's time endpoint: the audio port plus one.
func (r *Receiver) timeAddr() string {
	host, port, err := net.SplitHostPort(r.cfg.ServerAddr)
	if err != nil {
		return r.cfg.ServerAddr
	}
	var p int
	fmt.Sscanf(port, "%d", &p)
	return net.JoinHostPort(host, fmt.Sprintf("%d", p+1))
}

// heartbeatLoop tells the sender we are alive every 5 seconds.
func (r *Receiver) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.conn.Write([]byte(protocol.MsgHeartbeat)); err != nil {
				r.log.Debug().Err(err).Msg("heartbeat send")
			}
		}
	}
}

// State returns the connection state and, when failed, the reason.
func (r *Receiver) State() (State, string) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state, r.failReason
}

func (r *Receiver) setState(s State, reason string) {
	r.stateMu.Lock()
	r.state = s
	r.failReason = reason
	r.stateMu.Unlock()
}

func (r *Receiver) fail(reason string) error {
	r.setState(StateFailed, reason)
	r.log.Warn().Str("reason", reason).Msg("connection failed")
	return fmt.Errorf("connect: %s", reason)
}

// Stats returns a snapshot of counters plus clock telemetry.
func (r *Receiver) Stats() Stats {
	return Stats{
		Received:      r.stats.received.Load(),
		Lost:          r.stats.lost.Load(),
		DecryptErrors: r.stats.decryptErrors.Load(),
		Played:        r.stats.played.Load(),
		Underruns:     r.stats.underruns.Load(),
		OffsetNs:      r.clock.Offset(),
		RTTNs:         r.clock.RTT(),
	}
}

// SetVolume sets the sink's linear gain.
func (r *Receiver) SetVolume(gain float64) {
	r.cfg.Sink.SetGain(gain)
}

// BufferMs returns the server-suggested pre-roll.
func (r *Receiver) BufferMs() int {
	return r.bufferMs
}

// Stop cancels all loops and closes the sockets.
func (r *Receiver) Stop() {
	r.cancel()
	if r.conn != nil {
		r.conn.Close()
	}
	r.wg.Wait()
	if r.syncClient != nil {
		r.syncClient.Close()
	}
	r.setState(StateDisconnected, "")
}
