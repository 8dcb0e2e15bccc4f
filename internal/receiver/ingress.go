// ABOUTME: Receive loop: decrypt, sequence/loss accounting, scheduling
// ABOUTME: Feeds validated frames into the deadline-ordered playback buffer
package receiver

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/RishiIRL/austream-go/internal/crypto"
	"github.com/RishiIRL/austream-go/internal/protocol"
)

// statsCounters are the hot-path counters, shared with the play-out loop.
type statsCounters struct {
	received      atomic.Uint64
	lost          atomic.Uint64
	decryptErrors atomic.Uint64
	played        atomic.Uint64
	underruns     atomic.Uint64
}

// receiveLoop reads audio datagrams until the receiver stops. Datagrams that
// fail AEAD verification are counted and dropped; malformed datagrams are
// logged and dropped without a counter. The loop never acts on a payload
// that failed AEAD verification.
func (r *Receiver) receiveLoop() {
	buf := make([]byte, protocol.MaxDatagramSize)

	var lastSeq uint32
	haveSeq := false

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.conn.SetReadDeadline(time.Now().Add(streamReadPulse))
		n, err := r.conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-r.ctx.Done():
				return
			default:
			}
			r.log.Debug().Err(err).Msg("stream read")
			continue
		}

		if protocol.IsControl(buf[:n]) {
			// Late control replies share the socket; they are not audio.
			continue
		}

		pkt, err := protocol.DecodePacket(buf[:n])
		if err != nil {
			r.log.Debug().Err(err).Int("len", n).Msg("dropping malformed datagram")
			continue
		}

		pcm, err := crypto.Decrypt(r.key, pkt.Payload)
		if err != nil {
			r.stats.decryptErrors.Add(1)
			continue
		}

		r.stats.received.Add(1)

		if haveSeq {
			if gap := int64(pkt.Seq) - int64(lastSeq); gap > 1 {
				r.stats.lost.Add(uint64(gap - 1))
			}
		}
		if !haveSeq || pkt.Seq > lastSeq {
			lastSeq = pkt.Seq
			haveSeq = true
		}

		r.buffer.Insert(pkt.Timestamp, pkt.Seq, pcm)
	}
}
