package audio

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// soxrFlushBlocks bounds how many silent blocks flush feeds to drain the
// library's internal delay line.
const soxrFlushBlocks = 16

// soxrDelays caches the measured output delay per rate pair.
var soxrDelays sync.Map // [2]float64 → int64

// soxrStream adapts the pure-Go soxr-style resampler. Channels go through
// ProcessMulti so each keeps its own filter state. The library's start-up
// trim does not match its reported latency, so the stream is primed with
// silence and the measured delay is dropped from the front; output frame k
// then lines up with input k*source/target.
type soxrStream struct {
	r        resampling.Resampler
	channels int
	block    int
	skip     int64
	out      int64
}

func newSoxrStream(spec ResampleSpec) (*soxrStream, error) {
	r, err := newSoxrResampler(spec.SourceRate, spec.TargetRate, spec.Channels)
	if err != nil {
		return nil, err
	}
	block := max(int(spec.SourceRate/50), 64) // 20 ms
	preroll := soxrPreroll(spec.SourceRate)
	delay, err := soxrDelay(spec.SourceRate, spec.TargetRate, block, preroll)
	if err != nil {
		return nil, err
	}

	s := &soxrStream{r: r, channels: spec.Channels, block: block, skip: delay}
	if _, err := s.process(make([]float32, preroll*spec.Channels)); err != nil {
		return nil, err
	}
	s.out = 0
	return s, nil
}

func newSoxrResampler(source, target float64, channels int) (resampling.Resampler, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  source,
		OutputRate: target,
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return r, nil
}

// soxrPreroll is the silence fed ahead of the signal: 100 ms, at least 256
// frames.
func soxrPreroll(source float64) int {
	return max(int(source/10), 256)
}

// soxrDelay measures, on a mono resampler, how many leading outputs to drop
// after preroll frames of silence so an impulse at input frame q comes out
// at round(q*target/source).
func soxrDelay(source, target float64, block, preroll int) (int64, error) {
	key := [2]float64{source, target}
	if d, ok := soxrDelays.Load(key); ok {
		return d.(int64), nil
	}

	r, err := newSoxrResampler(source, target, 1)
	if err != nil {
		return 0, err
	}
	in := make([]float64, preroll+block+soxrFlushBlocks*block)
	in[preroll+block] = 1
	y, err := r.Process(in)
	if err != nil {
		return 0, fmt.Errorf("resample: %w", err)
	}

	peak, best := -1, 0.0
	for i, v := range y {
		if a := math.Abs(v); a > best {
			peak, best = i, a
		}
	}
	if peak < 0 {
		return 0, fmt.Errorf("resample: soxr impulse calibration produced no output")
	}
	d := int64(peak) - int64(math.Round(float64(block)*target/source))
	if d < 0 {
		return 0, fmt.Errorf("resample: soxr leads its input by %d frames", -d)
	}
	soxrDelays.Store(key, d)
	return d, nil
}

func (s *soxrStream) process(in []float32) ([]float32, error) {
	frames := len(in) / s.channels
	if frames == 0 {
		return nil, nil
	}
	x := deinterleave64(in, s.channels)
	y, err := s.r.ProcessMulti(x)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	n := len(y[0])
	for c := range y {
		if len(y[c]) != n {
			return nil, fmt.Errorf("resample: channel %d produced %d frames, channel 0 %d", c, len(y[c]), n)
		}
	}
	drop := int(min(s.skip, int64(n)))
	s.skip -= int64(drop)

	out := make([]float32, 0, (n-drop)*s.channels)
	for k := drop; k < n; k++ {
		for c := range y {
			out = append(out, float32(y[c][k]))
		}
	}
	s.out += int64(n - drop)
	return out, nil
}

// flush feeds silence instead of calling the library's Flush, which drains
// channel 0 only.
func (s *soxrStream) flush(limit int64) ([]float32, error) {
	prior := s.out
	var out []float32
	silence := make([]float32, s.block*s.channels)
	for i := 0; i < soxrFlushBlocks && s.out < limit; i++ {
		y, err := s.process(silence)
		if err != nil {
			return nil, err
		}
		out = append(out, y...)
	}

	// Trim the padding's output past limit, or pad if the library fell short.
	want := int(max(limit-prior, 0)) * s.channels
	if len(out) > want {
		out = out[:want]
	}
	for len(out) < want {
		out = append(out, 0)
	}
	s.out = limit
	return out, nil
}

func deinterleave64(samples []float32, channels int) [][]float64 {
	frames := len(samples) / channels
	planes := make([][]float64, channels)
	for c := range planes {
		planes[c] = make([]float64, frames)
		for f := range planes[c] {
			planes[c][f] = float64(samples[f*channels+c])
		}
	}
	return planes
}
