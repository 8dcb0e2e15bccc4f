// ABOUTME: Tests for pairing URL build and parse
// ABOUTME: Covers optional pin, default port, and rejection cases
package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairingRoundTrip(t *testing.T) {
	p := Pairing{Host: "192.168.1.10", Port: 5004, PIN: "123456", Name: "Studio PC"}

	got, err := ParsePairing(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPairingOptionalPIN(t *testing.T) {
	got, err := ParsePairing("austream://192.168.1.10:5004?name=host")
	require.NoError(t, err)
	assert.Empty(t, got.PIN)
	assert.Equal(t, "host", got.Name)
}

func TestPairingDefaultPort(t *testing.T) {
	got, err := ParsePairing("austream://192.168.1.10?pin=123456")
	require.NoError(t, err)
	assert.Equal(t, DefaultAudioPort, got.Port)
}

func TestPairingRejects(t *testing.T) {
	_, err := ParsePairing("http://192.168.1.10:5004")
	assert.Error(t, err)

	_, err = ParsePairing("austream://?pin=123456")
	assert.Error(t, err)

	_, err = ParsePairing("austream://192.168.1.10:notaport")
	assert.Error(t, err)
}
