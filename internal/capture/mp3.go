// ABOUTME: MP3 file capture source
// ABOUTME: Decodes a local MP3 to interleaved int16 stereo samples
package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Source streams decoded samples from an MP3 file. The file plays once;
// EOF ends the capture session.
type MP3Source struct {
	file       *os.File
	decoder    *mp3.Decoder
	sampleRate int
	title      string
}

// NewMP3Source opens and prepares an MP3 file.
func NewMP3Source(path string) (*MP3Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode MP3: %w", err)
	}

	filename := filepath.Base(path)

	return &MP3Source{
		file:       f,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
		title:      strings.TrimSuffix(filename, filepath.Ext(filename)),
	}, nil
}

func (s *MP3Source) Read(samples []int16) (int, error) {
	// The decoder emits little-endian int16 bytes.
	buf := make([]byte, len(samples)*2)

	n, err := io.ReadFull(s.decoder, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, err
	}

	numSamples := n / 2
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}

	return numSamples, nil
}

func (s *MP3Source) SampleRate() int { return s.sampleRate }
func (s *MP3Source) Channels() int   { return 2 } // go-mp3 always outputs stereo
func (s *MP3Source) Metadata() (string, string, string) {
	return s.title, "", ""
}
func (s *MP3Source) Close() error {
	return s.file.Close()
}
