// Package phoneme converts normalized text into ordered symbol sequences.
//
// Each supported language has one Phonemizer variant; a Registry maps a
// language tag to its variant and falls back to grapheme symbols for
// everything else. Word and segment boundaries are explicit Boundary
// symbols in the output.
package phoneme

import (
	"strconv"
	"strings"

	"github.com/example/go-polyglot-tts/internal/language"
)

// Kind classifies a Symbol.
type Kind uint8

const (
	KindPhone Kind = iota + 1
	KindPunct
	KindBoundary
	KindGrapheme
)

func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	case KindPunct:
		return "punct"
	case KindBoundary:
		return "boundary"
	case KindGrapheme:
		return "grapheme"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// NoMark is the Mark of a symbol without tone or stress.
const NoMark = -1

// BoundaryToken is the vocabulary key of the word boundary symbol.
const BoundaryToken = "SP"

// Symbol is one phonetic or graphemic unit. Mark carries a tone (1–5) for
// Mandarin finals or a stress level (0–2) for English vowels.
type Symbol struct {
	Kind  Kind
	Lang  language.Tag
	Value string
	Mark  int
}

// Token returns the vocabulary key, e.g. "AH0", "ei3", "SP" or ",".
func (s Symbol) Token() string {
	if s.Kind == KindBoundary {
		return BoundaryToken
	}
	if s.Mark == NoMark {
		return s.Value
	}
	return s.Value + strconv.Itoa(s.Mark)
}

func (s Symbol) String() string { return s.Token() }

// Phone returns a phone symbol.
func Phone(lang language.Tag, value string, mark int) Symbol {
	return Symbol{Kind: KindPhone, Lang: lang, Value: value, Mark: mark}
}

// Punct returns a punctuation symbol.
func Punct(lang language.Tag, value string) Symbol {
	return Symbol{Kind: KindPunct, Lang: lang, Value: value, Mark: NoMark}
}

// Boundary returns a word boundary symbol.
func Boundary(lang language.Tag) Symbol {
	return Symbol{Kind: KindBoundary, Lang: lang, Value: BoundaryToken, Mark: NoMark}
}

// Grapheme returns a grapheme symbol for one character.
func Grapheme(lang language.Tag, value string) Symbol {
	return Symbol{Kind: KindGrapheme, Lang: lang, Value: value, Mark: NoMark}
}

// ParsePhone splits a token such as "AH0" or "i05" into value and trailing
// mark digit. Tokens without a trailing digit get NoMark.
func ParsePhone(lang language.Tag, token string) Symbol {
	n := len(token)
	if n > 1 && token[n-1] >= '0' && token[n-1] <= '9' {
		return Phone(lang, token[:n-1], int(token[n-1]-'0'))
	}
	return Phone(lang, token, NoMark)
}

// Tokens renders each symbol's vocabulary key.
func Tokens(symbols []Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Token()
	}
	return out
}

// Join renders symbols as space separated tokens.
func Join(symbols []Symbol) string {
	return strings.Join(Tokens(symbols), " ")
}
