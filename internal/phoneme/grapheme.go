package phoneme

import (
	"unicode"

	"github.com/example/go-polyglot-tts/internal/language"
)

// GraphemePhonemizer emits one lower-cased symbol per rune. Runs of
// whitespace and connector punctuation such as '_' become a single
// boundary; format runes (unicode.Cf) are dropped.
type GraphemePhonemizer struct {
	lang language.Tag
}

// NewGrapheme returns the grapheme variant for lang.
func NewGrapheme(lang language.Tag) *GraphemePhonemizer {
	return &GraphemePhonemizer{lang: lang}
}

func (g *GraphemePhonemizer) Language() language.Tag { return g.lang }

func (g *GraphemePhonemizer) Phonemize(text string) []Symbol {
	var out []Symbol
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r) || unicode.Is(unicode.Pc, r):
			space = true
			continue
		case unicode.Is(unicode.Cf, r):
			continue
		}
		if space && len(out) > 0 {
			out = append(out, Boundary(g.lang))
		}
		space = false
		out = append(out, Grapheme(g.lang, string(unicode.ToLower(r))))
	}
	return out
}
