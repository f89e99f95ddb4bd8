package phoneme

import (
	"log/slog"
	"unicode"

	"github.com/example/go-polyglot-tts/internal/language"
)

// ChinesePhonemizer segments Mandarin text, reads each segment from the
// phrase dictionary or character by character, applies tone sandhi and
// emits opencpop initials and tonal finals. Runs of Latin letters are
// handed to the Latin phonemizer, English by default.
type ChinesePhonemizer struct {
	dict   *Dictionary
	reader Reader
	latin  Phonemizer
	log    *slog.Logger
}

// NewChinese returns the Mandarin variant. A nil dict selects the built-in
// phrase lexicon; a non-nil dict is layered over it.
func NewChinese(dict *Dictionary, opts ...Option) *ChinesePhonemizer {
	o := buildOptions(opts)
	base := BuiltinChinese()
	if dict != nil {
		base = base.Merge(dict)
	}
	latin := o.latin
	if latin == nil {
		latin = NewEnglish(nil, WithLogger(o.log))
	}
	return &ChinesePhonemizer{dict: base, reader: o.reader, latin: latin, log: o.log}
}

func (c *ChinesePhonemizer) Language() language.Tag { return language.Chinese }

// chinesePunct maps punctuation to its symbol. The yen signs and '^' are
// the long pause markers SP2 and SP3.
var chinesePunct = map[rune]string{
	',': ",", '.': ".", '!': "!", '?': "?", '…': "…", '-': "-",
	';': ",", ':': ",", '\'': "-",
	'¥': "SP2", '￥': "SP2", '^': "SP3",
}

func (c *ChinesePhonemizer) Phonemize(text string) []Symbol {
	var out []Symbol
	var run, latin []rune

	flush := func() {
		if len(run) > 0 {
			out = c.appendHan(out, string(run))
			run = run[:0]
		}
		if len(latin) > 0 {
			out = append(out, c.latin.Phonemize(string(latin))...)
			latin = latin[:0]
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			if len(latin) > 0 {
				flush()
			}
			run = append(run, r)
		case unicode.IsLetter(r) && unicode.Is(unicode.Latin, r):
			if len(run) > 0 {
				flush()
			}
			latin = append(latin, r)
		case unicode.IsSpace(r), unicode.Is(unicode.Cf, r):
			flush()
		default:
			flush()
			if p, ok := chinesePunct[r]; ok {
				out = append(out, Punct(language.Chinese, p))
				continue
			}
			c.miss(r)
			out = append(out, Grapheme(language.Chinese, string(unicode.ToLower(r))))
		}
	}
	flush()
	return out
}

func (c *ChinesePhonemizer) isPhrase(s string) bool {
	if runeCount(s) < 2 {
		return false
	}
	return c.dict.Has(s)
}

func (c *ChinesePhonemizer) appendHan(out []Symbol, run string) []Symbol {
	segs := Segment(run, c.dict)
	words := make([]zhWord, len(segs))
	for i, s := range segs {
		words[i] = c.read(s)
	}
	for _, w := range mergeForSandhi(words) {
		applySandhi(&w, c.isPhrase)
		out = c.appendWord(out, w)
		out = append(out, Boundary(language.Chinese))
	}
	return out
}

// read looks a segment up as a phrase, then per character.
func (c *ChinesePhonemizer) read(seg string) zhWord {
	w := zhWord{text: []rune(seg)}
	w.syl = make([]syllable, len(w.text))
	w.ok = make([]bool, len(w.text))

	if toks, found := c.dict.Lookup(seg); found && len(toks) == len(w.text) {
		parsed := true
		for i, t := range toks {
			s, ok := parseSyllable(t)
			if !ok {
				parsed = false
				break
			}
			w.syl[i], w.ok[i] = s, true
		}
		if parsed {
			w.phrase = len(w.text) > 1
			return w
		}
	}

	for i, r := range w.text {
		py, ok := c.reader.Read(r)
		if ok {
			w.syl[i], ok = parseSyllable(py)
		}
		w.ok[i] = ok
		if !ok {
			c.miss(r)
		}
	}
	return w
}

func (c *ChinesePhonemizer) appendWord(out []Symbol, w zhWord) []Symbol {
	for i, r := range w.text {
		if w.ok[i] {
			if ini, fin, ok := splitSyllable(w.syl[i].base); ok {
				out = append(out,
					Phone(language.Chinese, ini, NoMark),
					Phone(language.Chinese, fin, w.syl[i].tone))
				continue
			}
			c.miss(r)
		}
		out = append(out, Grapheme(language.Chinese, string(r)))
	}
	return out
}

func (c *ChinesePhonemizer) miss(r rune) {
	c.log.Debug("character has no reading", "kind", KindMiss, "lang", language.Chinese.String(), "char", string(r))
}
