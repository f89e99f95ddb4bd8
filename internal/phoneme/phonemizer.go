package phoneme

import (
	"log/slog"
	"slices"

	"github.com/example/go-polyglot-tts/internal/language"
)

// KindMiss is the log kind for a word or character with no pronunciation.
const KindMiss = "PhonemizationMiss"

// Phonemizer turns normalized text into symbols. Implementations are total:
// any input yields a (possibly empty) sequence.
type Phonemizer interface {
	Language() language.Tag
	Phonemize(text string) []Symbol
}

// Option configures a phonemizer.
type Option func(*options)

type options struct {
	log    *slog.Logger
	reader Reader
	latin  Phonemizer
}

func buildOptions(opts []Option) options {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reader == nil {
		o.reader = PinyinReader()
	}
	return o
}

// WithLogger sets the logger used for miss reports.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithReader replaces the per-character Mandarin reading source.
func WithReader(r Reader) Option {
	return func(o *options) {
		if r != nil {
			o.reader = r
		}
	}
}

// WithLatin sets the phonemizer the Mandarin variant uses for runs of Latin
// letters.
func WithLatin(p Phonemizer) Option {
	return func(o *options) {
		if p != nil {
			o.latin = p
		}
	}
}

// Registry maps each language tag to its phonemizer. Tags without an entry
// use the grapheme fallback.
type Registry struct {
	byLang   map[language.Tag]Phonemizer
	fallback Phonemizer
}

// NewRegistry registers ps by their Language; later entries replace earlier
// ones for the same tag.
func NewRegistry(fallback Phonemizer, ps ...Phonemizer) *Registry {
	if fallback == nil {
		fallback = NewGrapheme(language.Unknown)
	}
	r := &Registry{byLang: make(map[language.Tag]Phonemizer, len(ps)), fallback: fallback}
	for _, p := range ps {
		if p != nil {
			r.byLang[p.Language()] = p
		}
	}
	return r
}

// DefaultRegistry wires the English lexicon, the Mandarin segmenter (which
// reads Latin runs with the same English variant) and the Japanese kana
// romanizer. Nil dictionaries select the built-in tables.
func DefaultRegistry(en, zh *Dictionary, opts ...Option) *Registry {
	english := NewEnglish(en, opts...)
	zhOpts := append(slices.Clip(opts), WithLatin(english))
	return NewRegistry(NewGrapheme(language.Unknown),
		english,
		NewChinese(zh, zhOpts...),
		NewJapanese(),
	)
}

// For returns the phonemizer serving tag.
func (r *Registry) For(tag language.Tag) Phonemizer {
	if p, ok := r.byLang[tag]; ok {
		return p
	}
	return r.fallback
}

// Phonemize runs the phonemizer for tag.
func (r *Registry) Phonemize(text string, tag language.Tag) []Symbol {
	return r.For(tag).Phonemize(text)
}
