package audio

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

const (
	// maxPolyphaseBranches bounds the interpolation factor. Ratios that
	// reduce to more branches are replaced by the nearest fraction that fits.
	maxPolyphaseBranches = 4096
	// maxKernelTaps bounds the prototype filter length of one channel.
	maxKernelTaps = 1 << 18
)

// polyphaseStream converts interleaved float frames with one algo-dsp
// resampler per channel. The library filter is causal; its prototype is
// centred delay output frames late, so the first delay outputs are dropped
// and output frame k lands on input position (k+offset)*source/target with
// |offset| <= 0.5. The library keeps exact history between calls, so the
// result does not depend on how the input was chunked.
type polyphaseStream struct {
	rs       []*resample.Resampler
	channels int
	up, down int

	delay  int64
	offset float64

	skip     int64 // leading outputs still to drop
	inFrames int64
	out      int64 // frames emitted after the drop
}

func newPolyphaseStream(spec ResampleSpec) (*polyphaseStream, error) {
	up, down, err := polyphaseRatio(spec.SourceRate, spec.TargetRate)
	if err != nil {
		return nil, err
	}

	p := spec.preset()
	limit := max(maxKernelTaps/up, 1)
	taps := alignedTaps(min(p.taps*ceilDiv(down, up), limit), up, down)
	taps = min(taps, limit)
	opts := []resample.Option{
		resample.WithTapsPerPhase(taps),
		resample.WithCutoffScale(p.cutoff),
		resample.WithKaiserBeta(p.beta),
	}

	s := &polyphaseStream{channels: spec.Channels, up: up, down: down}
	for c := 0; c < spec.Channels; c++ {
		r, err := resample.NewRational(up, down, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
		s.rs = append(s.rs, r)
	}

	center := float64(taps*up-1) / 2 / float64(down)
	s.delay = int64(math.Round(center))
	s.offset = float64(s.delay) - center
	s.skip = s.delay
	return s, nil
}

// polyphaseRatio reduces target/source to up/down. Whole rates are reduced
// exactly; the rest, and exact ratios with too many branches, use the
// library's continued-fraction approximation. Interpolation past
// maxPolyphaseBranches is rejected.
func polyphaseRatio(source, target float64) (up, down int, err error) {
	if source == math.Trunc(source) && target == math.Trunc(target) {
		g := gcd(int(target), int(source))
		up, down = int(target)/g, int(source)/g
		if up <= maxPolyphaseBranches {
			return up, down, nil
		}
	}

	ratio := target / source
	if ratio > maxPolyphaseBranches {
		return 0, 0, fmt.Errorf("%w: %v→%v needs more than %d filter branches",
			ErrInvalidSpec, source, target, maxPolyphaseBranches)
	}
	maxDen := int(min(maxPolyphaseBranches, maxPolyphaseBranches/ratio))
	fit, err := resample.NewForRates(source, target,
		resample.WithMaxDenominator(max(maxDen, 1)),
		resample.WithTapsPerPhase(1),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	up, down = fit.Ratio()
	if up > maxPolyphaseBranches {
		return 0, 0, fmt.Errorf("%w: %v→%v needs %d filter branches, limit %d",
			ErrInvalidSpec, source, target, up, maxPolyphaseBranches)
	}
	return up, down, nil
}

// alignedTaps prefers a branch length in [base, 2*base) whose prototype
// centre (taps*up-1)/2 is a whole number of output frames. That needs an
// odd up; otherwise base is returned and the residual half frame stays.
func alignedTaps(base, up, down int) int {
	if up%2 == 0 {
		return base
	}
	for t := base; t < 2*base; t++ {
		if (t*up-1)%(2*down) == 0 {
			return t
		}
	}
	return base
}

func (s *polyphaseStream) process(in []float32) ([]float32, error) {
	frames := len(in) / s.channels
	if frames == 0 {
		return nil, nil
	}
	s.inFrames += int64(frames)
	return s.run(in, frames), nil
}

// flush feeds silence until the filter has produced limit frames past the
// delay, then trims to exactly limit.
func (s *polyphaseStream) flush(limit int64) ([]float32, error) {
	prior := s.out
	var out []float32

	// Library output n needs input frame floor(n*down/up).
	if need := limit + s.delay; need > 0 {
		last := (need - 1) * int64(s.down) / int64(s.up)
		if pad := last + 1 - s.inFrames; pad > 0 {
			out = s.run(make([]float32, int(pad)*s.channels), int(pad))
		}
	}

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

func (s *polyphaseStream) run(in []float32, frames int) []float32 {
	per := make([][]float64, s.channels)
	x := make([]float64, frames)
	for c, r := range s.rs {
		for f := 0; f < frames; f++ {
			x[f] = float64(in[f*s.channels+c])
		}
		per[c] = r.Process(x)
	}

	n := len(per[0])
	drop := int(min(s.skip, int64(n)))
	s.skip -= int64(drop)

	out := make([]float32, 0, (n-drop)*s.channels)
	for k := drop; k < n; k++ {
		for c := range per {
			out = append(out, float32(per[c][k]))
		}
	}
	s.out += int64(n - drop)
	return out
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
