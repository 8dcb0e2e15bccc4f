// ABOUTME: Wire codec for the clock-sync request/response exchange
// ABOUTME: 8-byte request and 24-byte response, big-endian int64 fields
package timesync

import (
	"encoding/binary"
	"errors"
	"time"
)

const (
	RequestSize  = 8
	ResponseSize = 24
)

var (
	ErrBadRequest  = errors.New("timesync: malformed request")
	ErrBadResponse = errors.New("timesync: malformed response")
)

// epoch anchors the process-local monotonic clock. All timestamps on the
// wire and in packet headers count nanoseconds from it.
var epoch = time.Now()

// Nanos returns the monotonic clock reading in nanoseconds. The sender uses
// it for packet timestamps and time-server replies; the receiver uses it for
// t1/t4 and play-out deadlines.
func Nanos() int64 {
	return time.Since(epoch).Nanoseconds()
}

// EncodeRequest builds a sync request carrying the client's send time.
func EncodeRequest(t1 int64) []byte {
	buf := make([]byte, RequestSize)
	binary.BigEndian.PutUint64(buf, uint64(t1))
	return buf
}

// DecodeRequest parses a sync request.
func DecodeRequest(data []byte) (t1 int64, err error) {
	if len(data) != RequestSize {
		return 0, ErrBadRequest
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// EncodeResponse builds a sync response: echoed t1, server receive time t2,
// server send time t3.
func EncodeResponse(t1, t2, t3 int64) []byte {
	buf := make([]byte, ResponseSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(t1))
	binary.BigEndian.PutUint64(buf[8:16], uint64(t2))
	binary.BigEndian.PutUint64(buf[16:24], uint64(t3))
	return buf
}

// DecodeResponse parses a sync response.
func DecodeResponse(data []byte) (t1, t2, t3 int64, err error) {
	if len(data) != ResponseSize {
		return 0, 0, 0, ErrBadResponse
	}
	t1 = int64(binary.BigEndian.Uint64(data[0:8]))
	t2 = int64(binary.BigEndian.Uint64(data[8:16]))
	t3 = int64(binary.BigEndian.Uint64(data[16:24]))
	return t1, t2, t3, nil
}
