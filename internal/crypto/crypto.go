// ABOUTME: Session key derivation and AES-256-GCM packet encryption
// ABOUTME: PIN-based PBKDF2 keys, byte-compatible across sender and receiver
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Salt is mixed into both the derived key and the PIN hash. It must be
	// identical on every peer.
	Salt = "AuStreamSalt2024"

	// PBKDF2 parameters
	KeySize    = 32
	Iterations = 10000

	// AES-GCM sizes
	NonceSize = 12
	TagSize   = 16
)

// ErrCiphertextShort is returned when a blob is too small to carry a nonce
// and an authentication tag.
var ErrCiphertextShort = errors.New("crypto: ciphertext too short")

// DeriveKey derives the 32-byte session key from a 6-digit PIN using
// PBKDF2-HMAC-SHA256.
func DeriveKey(pin string) []byte {
	return pbkdf2.Key([]byte(pin), []byte(Salt), Iterations, KeySize, sha256.New)
}

// HashPIN returns the base64 PIN hash sent during authentication:
// base64(SHA-256(pin || salt)).
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin + Salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random 96-bit
// nonce. Output layout is nonce || ciphertext || tag.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce||ciphertext||tag blob produced by Encrypt. It fails
// when the blob is shorter than nonce+tag or the authentication tag does not
// verify.
func Decrypt(key, blob []byte) ([]byte, error) {
	if len(blob) < NonceSize+TagSize {
		return nil, ErrCiphertextShort
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
}

// GeneratePIN returns a random 6-digit PIN as a string.
func GeneratePIN() (string, error) {
	var b [4]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}
