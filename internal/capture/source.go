// ABOUTME: Capture source abstraction feeding the sender pipeline
// ABOUTME: Sources yield interleaved int16 samples at their native format
package capture

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source provides interleaved signed 16-bit PCM samples. Implementations
// exist for a test tone and for MP3/FLAC files; a real loopback capture
// plugs in through the same interface.
type Source interface {
	// Read fills samples with interleaved int16 PCM and returns the number
	// of samples written. io.EOF ends the session.
	Read(samples []int16) (int, error)
	// SampleRate returns the native sample rate.
	SampleRate() int
	// Channels returns the native channel count (1 or 2).
	Channels() int
	// Metadata returns title, artist, album for display surfaces.
	Metadata() (title, artist, album string)
	// Close releases the source.
	Close() error
}

// NewSource creates a source from a file path. An empty path yields the
// test tone generator.
func NewSource(path string) (Source, error) {
	if path == "" {
		return NewToneSource(), nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return NewMP3Source(path)
	case ".flac":
		return NewFLACSource(path)
	default:
		return nil, fmt.Errorf("unsupported audio format %q (supported: .mp3, .flac)", ext)
	}
}
