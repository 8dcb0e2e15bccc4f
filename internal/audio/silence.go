// ABOUTME: Silence detection for the sender's pre-emission gate
// ABOUTME: Samples up to 100 positions evenly across a frame
package audio

import "encoding/binary"

// DefaultSilenceThreshold is the absolute 16-bit amplitude at or below
// which a frame counts as silent.
const DefaultSilenceThreshold = 200

// silenceProbes is the maximum number of samples inspected per frame.
const silenceProbes = 100

// IsSilent reports whether every probed sample of the PCM frame has an
// absolute amplitude at or below threshold. Probes are spaced evenly across
// the frame so short transients anywhere still register.
func IsSilent(frame []byte, threshold int) bool {
	total := len(frame) / 2
	if total == 0 {
		return true
	}

	step := total / silenceProbes
	if step == 0 {
		step = 1
	}

	for i, probes := 0, 0; i < total && probes < silenceProbes; i, probes = i+step, probes+1 {
		s := int(int16(binary.LittleEndian.Uint16(frame[i*2:])))
		if s < 0 {
			s = -s
		}
		if s > threshold {
			return false
		}
	}
	return true
}
