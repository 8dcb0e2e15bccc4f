// ABOUTME: Control plane text messages shared by sender and receiver
// ABOUTME: Probe, auth, heartbeat message constants and parsing helpers
package protocol

import (
	"strconv"
	"strings"
)

// Control messages travel as ASCII text on the audio/control socket.
const (
	MsgProbe     = "AUSTREAM_PROBE"
	MsgAlive     = "AUSTREAM_ALIVE:" // + hostname
	MsgAuth      = "AUSTREAM_AUTH:"  // + base64 pin hash
	MsgOK        = "AUSTREAM_OK:"    // + buffer ms
	MsgFail      = "AUSTREAM_FAIL"
	MsgNeedPIN   = "AUSTREAM_NEED_PIN"
	MsgHeartbeat = "AUSTREAM_HEARTBEAT"

	// MsgLegacyClient is the prefix of the old un-authenticated join
	// message. Senders answer MsgNeedPIN and do not register the client.
	MsgLegacyClient = "AUSTREAM_CLIENT"
)

// IsControl reports whether a datagram looks like a control message rather
// than framed audio. All control messages share the ASCII prefix.
func IsControl(data []byte) bool {
	return len(data) >= 8 && string(data[:8]) == "AUSTREAM"
}

// ParseAuth extracts the pin hash from an AUSTREAM_AUTH message.
func ParseAuth(msg string) (pinHash string, ok bool) {
	if !strings.HasPrefix(msg, MsgAuth) {
		return "", false
	}
	return msg[len(MsgAuth):], true
}

// ParseOK extracts the server-suggested buffer duration from an
// AUSTREAM_OK reply.
func ParseOK(msg string) (bufferMs int, ok bool) {
	if !strings.HasPrefix(msg, MsgOK) {
		return 0, false
	}
	n, err := strconv.Atoi(msg[len(MsgOK):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseAlive extracts the host name from an AUSTREAM_ALIVE probe reply.
func ParseAlive(msg string) (host string, ok bool) {
	if !strings.HasPrefix(msg, MsgAlive) {
		return "", false
	}
	return msg[len(MsgAlive):], true
}
