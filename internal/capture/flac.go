// ABOUTME: FLAC file capture source
// ABOUTME: Parses frames into interleaved int16 samples, scaling bit depth
package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mewkiz/flac"
)

// FLACSource streams decoded samples from a FLAC file. The file plays once;
// EOF ends the capture session.
type FLACSource struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitDepth   int
	title      string

	// leftover samples from a partially consumed frame
	pending []int16
}

// NewFLACSource opens and prepares a FLAC file.
func NewFLACSource(path string) (*FLACSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	if channels > 2 {
		f.Close()
		return nil, fmt.Errorf("unsupported FLAC channel count %d", channels)
	}

	filename := filepath.Base(path)

	return &FLACSource{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bitDepth:   int(info.BitsPerSample),
		title:      strings.TrimSuffix(filename, filepath.Ext(filename)),
	}, nil
}

func (s *FLACSource) Read(samples []int16) (int, error) {
	written := 0

	for written < len(samples) {
		if len(s.pending) > 0 {
			n := copy(samples[written:], s.pending)
			s.pending = s.pending[n:]
			written += n
			continue
		}

		frame, err := s.stream.ParseNext()
		if err != nil {
			if err == io.EOF && written > 0 {
				return written, nil
			}
			return written, err
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < s.channels; ch++ {
				s.pending = append(s.pending, s.scale(frame.Subframes[ch].Samples[i]))
			}
		}
	}

	return written, nil
}

// scale converts a FLAC sample at the stream bit depth to int16.
func (s *FLACSource) scale(v int32) int16 {
	switch {
	case s.bitDepth == 16:
		return int16(v)
	case s.bitDepth > 16:
		return int16(v >> (s.bitDepth - 16))
	default:
		return int16(v << (16 - s.bitDepth))
	}
}

func (s *FLACSource) SampleRate() int { return s.sampleRate }
func (s *FLACSource) Channels() int   { return s.channels }
func (s *FLACSource) Metadata() (string, string, string) {
	return s.title, "", ""
}
func (s *FLACSource) Close() error {
	return s.file.Close()
}
