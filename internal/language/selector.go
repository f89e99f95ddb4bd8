package language

import (
	"errors"
	"fmt"
	"log/slog"
)

// Source records how a Resolution was reached.
type Source int

const (
	SourceOverride Source = iota
	SourceDetected
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceDetected:
		return "detected"
	case SourceFallback:
		return "fallback"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Resolution is the outcome of Selector.Resolve.
type Resolution struct {
	Tag        Tag
	Source     Source
	Detected   Tag
	Confidence float64
	// Reason is set when Source is SourceFallback.
	Reason string
}

// Fallback reports whether the default language was substituted.
func (r Resolution) Fallback() bool { return r.Source == SourceFallback }

// ErrInvalidDefault is returned by NewSelector when the default language is
// not in the supported set.
var ErrInvalidDefault = errors.New("default language must be supported")

// SelectorConfig holds the explicit fallback policy.
type SelectorConfig struct {
	// Default is substituted when no usable language can be resolved.
	Default Tag
	// Threshold is the minimum detector confidence for accepting a result.
	Threshold float64
	// SilentFallback suppresses the warning for fallbacks caused by a
	// supported detection whose confidence is below Threshold. Fallbacks for
	// unsupported or failed detections always log.
	SilentFallback bool
}

// Selector resolves the language for an utterance.
type Selector struct {
	cfg      SelectorConfig
	detector Detector
	log      *slog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithLogger sets the logger used for fallback warnings. A nil logger keeps
// the default.
func WithLogger(l *slog.Logger) SelectorOption {
	return func(s *Selector) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSelector returns a Selector. A nil detector defaults to ScriptDetector.
func NewSelector(cfg SelectorConfig, detector Detector, opts ...SelectorOption) (*Selector, error) {
	if !cfg.Default.IsSupported() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDefault, cfg.Default)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("detector threshold %v out of range [0, 1]", cfg.Threshold)
	}
	if detector == nil {
		detector = ScriptDetector{}
	}

	s := &Selector{cfg: cfg, detector: detector, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Select returns the language tag for text. A supported override wins;
// otherwise the detector is consulted and the default substituted on low
// confidence, unsupported results or detector failure.
func (s *Selector) Select(text string, override Tag) Tag {
	return s.Resolve(text, override).Tag
}

// Resolve is Select with the decision details.
func (s *Selector) Resolve(text string, override Tag) Resolution {
	if override != Unknown {
		if override.IsSupported() {
			return Resolution{Tag: override, Source: SourceOverride, Detected: override, Confidence: 1}
		}
		s.log.Warn("language override not supported, detecting",
			slog.String("kind", "LanguageUnresolved"),
			slog.String("override", string(override)),
		)
	}

	det, err := s.detector.Detect(text)
	if err != nil {
		return s.fallback(det, fmt.Sprintf("detector failed: %v", err), true)
	}
	if !det.Tag.IsSupported() {
		return s.fallback(det, fmt.Sprintf("detected language %s is not supported", det.Tag), true)
	}
	if det.Confidence < s.cfg.Threshold {
		reason := fmt.Sprintf("confidence %.2f below threshold %.2f", det.Confidence, s.cfg.Threshold)
		return s.fallback(det, reason, !s.cfg.SilentFallback)
	}

	return Resolution{Tag: det.Tag, Source: SourceDetected, Detected: det.Tag, Confidence: det.Confidence}
}

func (s *Selector) fallback(det Detection, reason string, warn bool) Resolution {
	if warn {
		s.log.Warn("language unresolved, using default",
			slog.String("kind", "LanguageUnresolved"),
			slog.String("detected", det.Tag.String()),
			slog.Float64("confidence", det.Confidence),
			slog.String("default", string(s.cfg.Default)),
			slog.String("reason", reason),
		)
	}
	return Resolution{
		Tag:        s.cfg.Default,
		Source:     SourceFallback,
		Detected:   det.Tag,
		Confidence: det.Confidence,
		Reason:     reason,
	}
}
