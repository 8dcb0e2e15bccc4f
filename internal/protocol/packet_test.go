// ABOUTME: Tests for audio datagram framing
// ABOUTME: Header round trips and malformed datagram rejection
package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketRoundTrip(t *testing.T) {
	payload := make([]byte, 1948) // 12 nonce + 1920 pcm + 16 tag
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	p := &Packet{Seq: 4242, Timestamp: 987654321012345, Payload: payload}
	data := p.Encode()
	require.Equal(t, HeaderSize+len(payload), len(data))

	got, err := DecodePacket(data)
	require.NoError(t, err)
	assert.Equal(t, p.Seq, got.Seq)
	assert.Equal(t, p.Timestamp, got.Timestamp)
	assert.Equal(t, payload, got.Payload)
}

func TestPacketSeqWrap(t *testing.T) {
	p := &Packet{Seq: 0xFFFFFFFF, Timestamp: 1, Payload: []byte{1}}

	got, err := DecodePacket(p.Encode())
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), got.Seq)
}

func TestDecodeRejectsShort(t *testing.T) {
	for size := 0; size < HeaderSize; size++ {
		_, err := DecodePacket(make([]byte, size))
		assert.ErrorIs(t, err, ErrShortDatagram, "size %d", size)
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	p := &Packet{Seq: 1, Timestamp: 2, Payload: make([]byte, 100)}
	data := p.Encode()

	// Truncated payload
	_, err := DecodePacket(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrLengthMismatch)

	// Extra trailing byte
	_, err = DecodePacket(append(data, 0))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestControlDetection(t *testing.T) {
	assert.True(t, IsControl([]byte(MsgProbe)))
	assert.True(t, IsControl([]byte(MsgHeartbeat)))
	assert.True(t, IsControl([]byte(MsgAuth+"abc")))
	assert.False(t, IsControl([]byte{0, 1, 2, 3}))
	assert.False(t, IsControl((&Packet{Seq: 1, Payload: []byte{9}}).Encode()))
}

func TestParseHelpers(t *testing.T) {
	hash, ok := ParseAuth(MsgAuth + "deadbeef==")
	require.True(t, ok)
	assert.Equal(t, "deadbeef==", hash)

	_, ok = ParseAuth(MsgHeartbeat)
	assert.False(t, ok)

	ms, ok := ParseOK(MsgOK + "50")
	require.True(t, ok)
	assert.Equal(t, 50, ms)

	_, ok = ParseOK(MsgOK + "zero")
	assert.False(t, ok)

	host, ok := ParseAlive(MsgAlive + "studio-pc")
	require.True(t, ok)
	assert.Equal(t, "studio-pc", host)
}
