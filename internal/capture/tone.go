// ABOUTME: Test tone capture source
// ABOUTME: Generates a 440Hz stereo sine wave at the transport format
package capture

import (
	"math"
	"sync"

	"github.com/RishiIRL/austream-go/internal/audio"
)

// ToneSource generates a continuous 440Hz test tone. It never returns EOF.
type ToneSource struct {
	mu          sync.Mutex
	sampleIndex uint64
	frequency   float64
}

// NewToneSource creates a tone generator at A4.
func NewToneSource() *ToneSource {
	return &ToneSource{frequency: 440.0}
}

func (s *ToneSource) Read(samples []int16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(samples) / 2 // stereo

	for i := 0; i < frames; i++ {
		t := float64(s.sampleIndex+uint64(i)) / float64(audio.SampleRate)
		v := math.Sin(2 * math.Pi * s.frequency * t)

		pcm := int16(v * 32767.0 * 0.5) // 50% volume

		samples[i*2] = pcm
		samples[i*2+1] = pcm
	}

	s.sampleIndex += uint64(frames)

	return frames * 2, nil
}

func (s *ToneSource) SampleRate() int { return audio.SampleRate }
func (s *ToneSource) Channels() int   { return audio.Channels }
func (s *ToneSource) Metadata() (string, string, string) {
	return "Test Tone", "AuStream", ""
}
func (s *ToneSource) Close() error { return nil }
