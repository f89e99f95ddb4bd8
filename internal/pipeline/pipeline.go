// Package pipeline runs the per-utterance stages
//
//	Raw → Detected → Normalized → Phonemized → Encoded
//	    → (engine) Synthesized → Resampled → (writer) Written
//
// Each stage is a pure function of its input Utterance and the shared,
// read-only resources; it returns a new Utterance or a *Error. The context
// is checked between stages only.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/phoneme"
	"github.com/example/go-polyglot-tts/internal/resources"
	"github.com/example/go-polyglot-tts/internal/text"
	"github.com/example/go-polyglot-tts/internal/tokenizer"
)

// State is an utterance's position in the pipeline.
type State int

const (
	StateUnknown State = iota
	StateRaw
	StateDetected
	StateNormalized
	StatePhonemized
	StateEncoded
	StateSynthesized
	StateResampled
	StateWritten
)

var stateNames = [...]string{
	StateUnknown:     "unknown",
	StateRaw:         "raw",
	StateDetected:    "detected",
	StateNormalized:  "normalized",
	StatePhonemized:  "phonemized",
	StateEncoded:     "encoded",
	StateSynthesized: "synthesized",
	StateResampled:   "resampled",
	StateWritten:     "written",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown utterance state %q", b)
}

// Utterance is one piece of text moving through the stages.
type Utterance struct {
	Raw            string           `json:"raw"`
	Language       language.Tag     `json:"language"`
	LanguageSource string           `json:"language_source,omitempty"`
	Normalized     string           `json:"normalized"`
	Symbols        []phoneme.Symbol `json:"-"`
	Tokens         []string         `json:"tokens"`
	TokenIDs       []int64          `json:"token_ids"`
	UnknownSymbols int              `json:"unknown_symbols"`
	State          State            `json:"state"`
}

// NewUtterance returns a Raw utterance.
func NewUtterance(raw string) Utterance {
	return Utterance{Raw: raw, State: StateRaw}
}

// Options are the values threaded in from configuration.
type Options struct {
	DefaultLanguage language.Tag
	Threshold       float64
	SilentFallback  bool

	// Output describes the resampled waveform; zero TargetRate or Channels
	// keeps the engine's.
	Output OutputOptions

	// Concurrency bounds EncodeBatch workers; < 1 means 1.
	Concurrency int
}

// OutputOptions is the target of the Resampled stage.
type OutputOptions struct {
	TargetRate int
	Channels   int
	Quality    audio.Quality
	Engine     audio.Engine
	Format     audio.SampleFormat
}

// DefaultOptions returns English fallback at threshold 0.5, one worker and
// engine-native output.
func DefaultOptions() Options {
	return Options{
		DefaultLanguage: language.English,
		Threshold:       0.5,
		Concurrency:     1,
		Output:          OutputOptions{Quality: audio.DefaultQuality, Engine: audio.EngineSinc},
	}
}

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	log      *slog.Logger
	detector language.Detector
}

// WithLogger sets the logger for every stage.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDetector replaces the built-in ScriptDetector.
func WithDetector(d language.Detector) Option {
	return func(c *config) { c.detector = d }
}

// Pipeline holds the stage implementations built over one resource bundle.
// It is immutable and safe for concurrent use.
type Pipeline struct {
	res       *resources.Resources
	opts      Options
	log       *slog.Logger
	selector  *language.Selector
	norm      *text.Normalizer
	registry  *phoneme.Registry
	tokenizer *tokenizer.Encoder
}

// New builds a pipeline. A nil res selects resources.Builtin().
func New(res *resources.Resources, opts Options, mods ...Option) (*Pipeline, error) {
	if res == nil {
		res = resources.Builtin()
	}
	cfg := config{log: slog.Default()}
	for _, m := range mods {
		m(&cfg)
	}

	sel, err := language.NewSelector(language.SelectorConfig{
		Default:        opts.DefaultLanguage,
		Threshold:      opts.Threshold,
		SilentFallback: opts.SilentFallback,
	}, cfg.detector, language.WithLogger(cfg.log))
	if err != nil {
		return nil, fmt.Errorf("language selector: %w", err)
	}
	if err := opts.Output.validate(); err != nil {
		return nil, stageError(KindInvalidResampleSpec, StateResampled, err)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	normOpts := append(res.NormalizerOptions(), text.WithLogger(cfg.log))
	return &Pipeline{
		res:       res,
		opts:      opts,
		log:       cfg.log,
		selector:  sel,
		norm:      text.NewNormalizer(normOpts...),
		registry:  res.Registry(phoneme.WithLogger(cfg.log)),
		tokenizer: res.Encoder(tokenizer.WithLogger(cfg.log)),
	}, nil
}

// Options returns the pipeline's options.
func (p *Pipeline) Options() Options { return p.opts }

// Resources returns the shared bundle.
func (p *Pipeline) Resources() *resources.Resources { return p.res }

// Encoder returns the token encoder.
func (p *Pipeline) Encoder() *tokenizer.Encoder { return p.tokenizer }

// Detect resolves the utterance language. override wins when supported.
func (p *Pipeline) Detect(u Utterance, override language.Tag) Utterance {
	res := p.selector.Resolve(u.Raw, override)
	u.Language = res.Tag
	u.LanguageSource = res.Source.String()
	u.State = StateDetected
	return u
}

// Normalize rewrites numerals, abbreviations, punctuation and whitespace.
func (p *Pipeline) Normalize(u Utterance) Utterance {
	u.Normalized = p.norm.Normalize(u.Raw, u.Language)
	u.State = StateNormalized
	return u
}

// Phonemize maps normalized text to symbols.
func (p *Pipeline) Phonemize(u Utterance) Utterance {
	u.Symbols = p.registry.Phonemize(u.Normalized, u.Language)
	u.Tokens = phoneme.Tokens(u.Symbols)
	u.State = StatePhonemized
	return u
}

// Encode maps symbols to token IDs.
func (p *Pipeline) Encode(u Utterance) Utterance {
	u.TokenIDs, u.UnknownSymbols = p.tokenizer.EncodeCounted(u.Symbols)
	u.State = StateEncoded
	return u
}

// Prepare runs the forward stages up to Encoded, checking ctx between
// stages.
func (p *Pipeline) Prepare(ctx context.Context, raw string, override language.Tag) (Utterance, error) {
	u := NewUtterance(raw)
	steps := []func(Utterance) Utterance{
		func(u Utterance) Utterance { return p.Detect(u, override) },
		p.Normalize,
		p.Phonemize,
		p.Encode,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return u, stageError(KindCanceled, u.State, err)
		}
		u = step(u)
	}

	p.log.Debug("utterance encoded",
		slog.String("lang", u.Language.String()),
		slog.Int("symbols", len(u.Symbols)),
		slog.Int("unknown", u.UnknownSymbols),
	)
	return u, nil
}
