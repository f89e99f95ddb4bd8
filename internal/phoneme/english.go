package phoneme

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/example/go-polyglot-tts/internal/language"
)

// EnglishPhonemizer looks words up in an ARPAbet lexicon and falls back to
// letter-to-sound rules.
type EnglishPhonemizer struct {
	dict *Dictionary
	log  *slog.Logger
}

// NewEnglish returns the English variant. A nil dict selects the built-in
// lexicon; a non-nil dict is layered over it.
func NewEnglish(dict *Dictionary, opts ...Option) *EnglishPhonemizer {
	o := buildOptions(opts)
	base := BuiltinEnglish()
	if dict != nil {
		base = base.Merge(dict)
	}
	return &EnglishPhonemizer{dict: base, log: o.log}
}

func (e *EnglishPhonemizer) Language() language.Tag { return language.English }

// englishPunct maps input punctuation to the emitted punctuation symbol.
var englishPunct = map[rune]string{
	',': ",", '.': ".", '!': "!", '?': "?", '-': "-", '…': "…",
	';': ",", ':': ",", '"': "-", '\'': "-",
}

func (e *EnglishPhonemizer) Phonemize(text string) []Symbol {
	var out []Symbol
	var word []rune

	flush := func() {
		if len(word) == 0 {
			return
		}
		for _, piece := range splitCamel(strings.Trim(string(word), "'")) {
			out = append(out, e.word(piece)...)
			out = append(out, Boundary(language.English))
		}
		word = word[:0]
	}

	rs := []rune(text)
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		case r == '\'' && len(word) > 0 && i+1 < len(rs) && unicode.IsLetter(rs[i+1]):
			word = append(word, r)
		case unicode.IsSpace(r) || unicode.Is(unicode.Pc, r):
			flush()
		case unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Mn, r):
			if len(word) > 0 && unicode.Is(unicode.Mn, r) {
				word = append(word, r)
			}
		default:
			flush()
			if p, ok := englishPunct[r]; ok {
				out = append(out, Punct(language.English, p))
				continue
			}
			out = append(out, Grapheme(language.English, string(unicode.ToLower(r))))
		}
	}
	flush()
	return out
}

func (e *EnglishPhonemizer) word(w string) []Symbol {
	if w == "" {
		return nil
	}
	key := strings.ToUpper(w)
	if toks, ok := e.dict.Lookup(key); ok {
		return parseTokens(language.English, toks)
	}
	if base, ok := strings.CutSuffix(key, "'S"); ok {
		if toks, ok := e.dict.Lookup(base); ok {
			return append(parseTokens(language.English, toks), Phone(language.English, "Z", NoMark))
		}
	}
	e.log.Debug("word not in lexicon", "kind", KindMiss, "lang", language.English.String(), "word", w)
	return LetterToSound(w)
}

func parseTokens(lang language.Tag, toks []string) []Symbol {
	out := make([]Symbol, len(toks))
	for i, t := range toks {
		out[i] = ParsePhone(lang, t)
	}
	return out
}

// splitCamel splits "helloWorld" into "hello" and "World". Runs of capitals
// stay together.
func splitCamel(w string) []string {
	rs := []rune(w)
	var parts []string
	start := 0
	for i := 1; i < len(rs); i++ {
		if unicode.IsUpper(rs[i]) && unicode.IsLower(rs[i-1]) {
			parts = append(parts, string(rs[start:i]))
			start = i
		}
	}
	return append(parts, string(rs[start:]))
}
