// ABOUTME: On-wire audio datagram framing
// ABOUTME: 14-byte big-endian header followed by the AEAD payload
package protocol

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderSize is the fixed audio datagram header:
	// u32 sequence | i64 timestamp ns | u16 payload length.
	HeaderSize = 14

	// MaxDatagramSize bounds receive buffers. Payloads stay under 2 KiB.
	MaxDatagramSize = 2048
)

var (
	// ErrShortDatagram is returned for datagrams smaller than the header.
	ErrShortDatagram = errors.New("protocol: datagram shorter than header")

	// ErrLengthMismatch is returned when the declared payload length does
	// not match the datagram size.
	ErrLengthMismatch = errors.New("protocol: payload length mismatch")
)

// Packet is one framed audio datagram.
type Packet struct {
	Seq       uint32
	Timestamp int64  // sender monotonic clock, nanoseconds
	Payload   []byte // AEAD output: nonce || ciphertext || tag
}

// Encode serializes the packet into a fresh buffer of exactly
// HeaderSize+len(Payload) bytes.
func (p *Packet) Encode() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))
	binary.BigEndian.PutUint32(buf[0:4], p.Seq)
	binary.BigEndian.PutUint64(buf[4:12], uint64(p.Timestamp))
	binary.BigEndian.PutUint16(buf[12:14], uint16(len(p.Payload)))
	copy(buf[HeaderSize:], p.Payload)
	return buf
}

// DecodePacket parses a datagram. It rejects datagrams shorter than the
// header and any whose declared payload length disagrees with the actual
// datagram size. The returned payload aliases data.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, ErrShortDatagram
	}

	payloadLen := int(binary.BigEndian.Uint16(data[12:14]))
	if payloadLen != len(data)-HeaderSize {
		return nil, ErrLengthMismatch
	}

	return &Packet{
		Seq:       binary.BigEndian.Uint32(data[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(data[4:12])),
		Payload:   data[HeaderSize:],
	}, nil
}
