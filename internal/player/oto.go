// ABOUTME: Audio output sink using the oto library
// ABOUTME: Streams PCM through a pipe-fed oto player with software volume
package player

import (
	"fmt"
	"io"

	"github.com/RishiIRL/austream-go/internal/app"
	"github.com/RishiIRL/austream-go/internal/audio"
	"github.com/ebitengine/oto/v3"
)

// OtoSink renders PCM frames through the OS audio device.
type OtoSink struct {
	otoCtx *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	gain   *gainValue
}

// NewOtoSink initializes the audio device at the transport format.
func NewOtoSink() (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("create oto context: %w", err)
	}
	<-readyChan

	pr, pw := io.Pipe()
	p := ctx.NewPlayer(pr)
	p.Play()

	app.GetLogger("player").Info().
		Int("rate", audio.SampleRate).
		Int("channels", audio.Channels).
		Msg("audio output initialized")

	return &OtoSink{
		otoCtx: ctx,
		player: p,
		pw:     pw,
		gain:   newGainValue(),
	}, nil
}

// Write applies the gain and streams the frame to the device.
func (o *OtoSink) Write(pcm []byte) error {
	out := pcm
	if gain := o.gain.Get(); gain < 1.0 {
		samples := audio.BytesToSamples(pcm)
		audio.ApplyGain(samples, gain)
		out = audio.SamplesToBytes(samples)
	}

	if _, err := o.pw.Write(out); err != nil {
		return fmt.Errorf("write to audio device: %w", err)
	}
	return nil
}

// SetGain sets the linear playback gain.
func (o *OtoSink) SetGain(gain float64) {
	o.gain.Set(gain)
}

// Gain returns the current gain.
func (o *OtoSink) Gain() float64 {
	return o.gain.Get()
}

// Close stops playback and releases the device.
func (o *OtoSink) Close() error {
	o.pw.Close()
	if o.player != nil {
		o.player.Close()
	}
	o.otoCtx.Suspend()
	return nil
}
