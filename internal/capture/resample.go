// ABOUTME: Linear-interpolation resampler for capture sources
// ABOUTME: Converts arbitrary source rates to the 48kHz transport rate
package capture

// Resampler converts interleaved int16 audio between sample rates using
// linear interpolation.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// NewResampler creates a resampler for interleaved audio with the given
// channel count.
func NewResampler(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to the output rate, writing into output.
// Returns the number of output samples produced.
func (r *Resampler) Resample(input []int16, output []int16) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		inputPos := r.position
		inputIdx := int(inputPos)

		if inputIdx >= inputFrames-1 {
			break
		}

		frac := inputPos - float64(inputIdx)

		for ch := 0; ch < r.channels; ch++ {
			s1 := input[inputIdx*r.channels+ch]
			s2 := input[(inputIdx+1)*r.channels+ch]

			interpolated := float64(s1)*(1.0-frac) + float64(s2)*frac
			output[outIdx*r.channels+ch] = int16(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep only the fractional position for the next chunk.
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// InputSamplesNeeded estimates how many input samples produce the requested
// output sample count.
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames)*r.ratio) + 2
	return inputFrames * r.channels
}

// Reset clears interpolation state.
func (r *Resampler) Reset() {
	r.position = 0.0
}
