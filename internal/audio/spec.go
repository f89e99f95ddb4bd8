package audio

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSpec reports a resample spec that cannot be executed.
var ErrInvalidSpec = errors.New("invalid resample spec")

// Rate and channel bounds accepted by Validate. The polyphase filter and the
// output buffers grow with both, so requests past them are rejected rather
// than allocated.
const (
	MaxSampleRate = 768000
	MaxChannels   = 32
)

// Quality selects a Kaiser-windowed polyphase filter preset.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
	QualityBest   Quality = "best"

	DefaultQuality = QualityHigh
)

// Engine selects the resampler implementation.
type Engine string

const (
	// EngineSinc is the Kaiser-windowed polyphase FIR from
	// github.com/cwbudde/algo-dsp.
	EngineSinc Engine = "sinc"
	// EngineSoxr uses github.com/tphakala/go-audio-resampling.
	EngineSoxr Engine = "soxr"
)

// filterPreset describes one polyphase design. taps is the branch length
// when upsampling; downsampling by d scales it by ceil(d) so the lowpass
// keeps the same number of zero crossings. cutoff is the passband edge
// relative to the lower Nyquist frequency.
type filterPreset struct {
	taps   int
	cutoff float64
	beta   float64
}

var presets = map[Quality]filterPreset{
	QualityLow:    {taps: 16, cutoff: 0.85, beta: 5.0},
	QualityMedium: {taps: 24, cutoff: 0.90, beta: 6.5},
	QualityHigh:   {taps: 32, cutoff: 0.94, beta: 8.6},
	QualityBest:   {taps: 64, cutoff: 0.97, beta: 10.0},
}

// Qualities returns the preset names from fastest to best.
func Qualities() []Quality {
	return []Quality{QualityLow, QualityMedium, QualityHigh, QualityBest}
}

// ParseQuality normalizes a preset name; "" selects DefaultQuality.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return DefaultQuality, nil
	}
	if _, ok := presets[q]; !ok {
		return "", fmt.Errorf("unknown resample quality %q (want low|medium|high|best)", s)
	}
	return q, nil
}

// ParseEngine normalizes an engine name; "" selects EngineSinc.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineSinc, nil
	case EngineSinc, EngineSoxr:
		return e, nil
	default:
		return "", fmt.Errorf("unknown resample engine %q (want sinc|soxr)", s)
	}
}

// ResampleSpec is a conversion request independent of any buffer.
type ResampleSpec struct {
	SourceRate float64
	TargetRate float64
	Channels   int
	Quality    Quality
	Engine     Engine
	// Format converts the output when set; FormatKeep keeps the input format.
	Format SampleFormat
}

// Identity reports whether the spec is a rate no-op.
func (s ResampleSpec) Identity() bool { return s.SourceRate == s.TargetRate }

// Ratio returns target/source.
func (s ResampleSpec) Ratio() float64 { return s.TargetRate / s.SourceRate }

// OutputFrames returns the total output length for inFrames input frames.
func (s ResampleSpec) OutputFrames(inFrames int64) int64 {
	if s.Identity() {
		return inFrames
	}
	return int64(math.Round(float64(inFrames) * s.Ratio()))
}

// Validate rejects non-positive or non-finite rates, rates above
// MaxSampleRate, channel counts outside [1, MaxChannels], and unknown
// quality, engine or format names. Nothing is clamped.
func (s ResampleSpec) Validate() error {
	if !validRate(s.SourceRate) {
		return fmt.Errorf("%w: source rate %v", ErrInvalidSpec, s.SourceRate)
	}
	if !validRate(s.TargetRate) {
		return fmt.Errorf("%w: target rate %v", ErrInvalidSpec, s.TargetRate)
	}
	if s.SourceRate > MaxSampleRate || s.TargetRate > MaxSampleRate {
		return fmt.Errorf("%w: rate %v→%v above %d Hz", ErrInvalidSpec, s.SourceRate, s.TargetRate, MaxSampleRate)
	}
	if s.Channels < 1 || s.Channels > MaxChannels {
		return fmt.Errorf("%w: channels %d", ErrInvalidSpec, s.Channels)
	}
	if s.Quality != "" {
		if _, ok := presets[s.Quality]; !ok {
			return fmt.Errorf("%w: quality %q", ErrInvalidSpec, s.Quality)
		}
	}
	if _, err := ParseEngine(string(s.Engine)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	switch s.Format {
	case FormatKeep, Float32, Int16:
	default:
		return fmt.Errorf("%w: format %s", ErrInvalidSpec, s.Format)
	}
	return nil
}

func (s ResampleSpec) preset() filterPreset {
	if p, ok := presets[s.Quality]; ok {
		return p
	}
	return presets[DefaultQuality]
}

func validRate(r float64) bool {
	return r > 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}
