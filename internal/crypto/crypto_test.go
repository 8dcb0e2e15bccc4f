// ABOUTME: Tests for key derivation, PIN hashing, and AEAD round trips
// ABOUTME: Verifies cross-peer determinism and tamper rejection
package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := DeriveKey("123456")
	k2 := DeriveKey("123456")

	require.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2, "same PIN must derive the same key")

	k3 := DeriveKey("654321")
	assert.NotEqual(t, k1, k3, "different PINs must derive different keys")
}

func TestHashPIN(t *testing.T) {
	pin := "123456"
	sum := sha256.Sum256([]byte(pin + Salt))
	want := base64.StdEncoding.EncodeToString(sum[:])

	assert.Equal(t, want, HashPIN(pin))
	assert.NotEqual(t, HashPIN("000000"), HashPIN(pin))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("123456")
	plaintext := make([]byte, 1920)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	blob, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	require.Equal(t, NonceSize+len(plaintext)+TagSize, len(blob))

	got, err := Decrypt(key, blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncryptFreshNonce(t *testing.T) {
	key := DeriveKey("123456")
	plaintext := []byte("same message")

	b1, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	b2, err := Encrypt(key, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, b1[:NonceSize], b2[:NonceSize], "nonces must be unique per call")
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := DeriveKey("123456")
	blob, err := Encrypt(key, []byte("audio frame"))
	require.NoError(t, err)

	// Flip one bit in every position; all must fail to authenticate.
	for i := 0; i < len(blob); i++ {
		tampered := make([]byte, len(blob))
		copy(tampered, blob)
		tampered[i] ^= 0x01

		_, err := Decrypt(key, tampered)
		assert.Error(t, err, "bit flip at %d must fail", i)
	}
}

func TestDecryptRejectsShortBlob(t *testing.T) {
	key := DeriveKey("123456")

	_, err := Decrypt(key, make([]byte, NonceSize+TagSize-1))
	assert.ErrorIs(t, err, ErrCiphertextShort)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	blob, err := Encrypt(DeriveKey("123456"), []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(DeriveKey("000000"), blob)
	assert.Error(t, err)
}

func TestGeneratePIN(t *testing.T) {
	pin, err := GeneratePIN()
	require.NoError(t, err)
	require.Len(t, pin, 6)
	for _, c := range pin {
		assert.True(t, c >= '0' && c <= '9')
	}
}
