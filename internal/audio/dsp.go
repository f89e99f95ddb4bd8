package audio

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

const (
	// dcBlockCutoffHz is the corner frequency of the DC blocking highpass.
	dcBlockCutoffHz = 10.0
	dcBlockOrder    = 2
)

// PeakNormalize scales samples so the peak amplitude reaches 1.0. Silence
// is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	if len(samples) == 0 {
		return samples
	}
	scaled, err := signal.Normalize(toFloat64(samples), 1)
	if err != nil {
		return samples
	}
	return toFloat32(scaled)
}

// DCBlock removes DC offset per channel. The mean is subtracted first so a
// constant offset is gone from the first sample, then a Butterworth
// highpass tracks slow drift.
func DCBlock(samples []float32, sampleRate, channels int) []float32 {
	if len(samples) == 0 || sampleRate < 1 || channels < 1 {
		return samples
	}
	coeffs := design.ButterworthHP(dcBlockCutoffHz, dcBlockOrder, float64(sampleRate))

	planes := make([][]float32, channels)
	for c, plane := range Deinterleave(samples, channels) {
		centred, err := signal.RemoveDC(toFloat64(plane))
		if err != nil {
			planes[c] = plane
			continue
		}
		if float64(sampleRate) > 2*dcBlockCutoffHz {
			biquad.NewChain(coeffs).ProcessBlock(centred)
		}
		planes[c] = toFloat32(centred)
	}
	out := Interleave(planes)
	return append(out, samples[len(out):]...) // trailing partial frame
}

// FadeIn applies a linear fade-in ramp over the given duration in
// milliseconds.
func FadeIn(samples []float32, sampleRate, channels int, ms float64) []float32 {
	n := fadeFrames(len(samples), sampleRate, channels, ms)
	out := make([]float32, len(samples))
	copy(out, samples)
	for f := 0; f < n; f++ {
		g := float32(f) / float32(n)
		for c := 0; c < channels; c++ {
			out[f*channels+c] *= g
		}
	}
	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in
// milliseconds. The last frame reaches zero.
func FadeOut(samples []float32, sampleRate, channels int, ms float64) []float32 {
	n := fadeFrames(len(samples), sampleRate, channels, ms)
	out := make([]float32, len(samples))
	copy(out, samples)
	frames := len(samples) / max(channels, 1)
	for i := 0; i < n; i++ {
		f := frames - n + i
		g := float32(n-1-i) / float32(n)
		for c := 0; c < channels; c++ {
			out[f*channels+c] *= g
		}
	}
	return out
}

func fadeFrames(samples, sampleRate, channels int, ms float64) int {
	if sampleRate < 1 || channels < 1 || ms <= 0 {
		return 0
	}
	return min(int(ms/1000*float64(sampleRate)), samples/channels)
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
