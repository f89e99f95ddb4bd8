package phoneme

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/go-polyglot-tts/internal/language"
)

// ltsMaxChunk is the longest grapheme chunk in ltsRules.
const ltsMaxChunk = 4

// ltsRules maps lower-case grapheme chunks to unstressed ARPAbet phones.
var ltsRules = map[string]string{
	"tion": "SH AH N",
	"sion": "ZH AH N",
	"ough": "AO",
	"ight": "AY T",
	"eigh": "EY",
	"ture": "CH ER",
	"ious": "IY AH S",

	"tch": "CH",
	"dge": "JH",
	"sch": "S K",
	"igh": "AY",
	"ing": "IH NG",
	"air": "EH R",
	"ear": "IH R",
	"our": "AW R",
	"ght": "T",
	"que": "K",

	"th": "TH",
	"sh": "SH",
	"ch": "CH",
	"ph": "F",
	"wh": "W",
	"wr": "R",
	"kn": "N",
	"gn": "N",
	"ck": "K",
	"ng": "NG",
	"qu": "K W",
	"gh": "",
	"ee": "IY",
	"ea": "IY",
	"oo": "UW",
	"ou": "AW",
	"ow": "OW",
	"oi": "OY",
	"oy": "OY",
	"ai": "EY",
	"ay": "EY",
	"au": "AO",
	"aw": "AO",
	"ie": "IY",
	"ei": "EY",
	"ey": "EY",
	"er": "ER",
	"ir": "ER",
	"ur": "ER",
	"ar": "AA R",
	"or": "AO R",
	"ll": "L",
	"ss": "S",
	"tt": "T",
	"pp": "P",
	"ff": "F",
	"mm": "M",
	"nn": "N",
	"rr": "R",
	"dd": "D",
	"bb": "B",
	"gg": "G",
	"zz": "Z",
	"cc": "K",

	"a": "AE",
	"b": "B",
	"c": "K",
	"d": "D",
	"e": "EH",
	"f": "F",
	"g": "G",
	"h": "HH",
	"i": "IH",
	"j": "JH",
	"k": "K",
	"l": "L",
	"m": "M",
	"n": "N",
	"o": "AA",
	"p": "P",
	"q": "K",
	"r": "R",
	"s": "S",
	"t": "T",
	"u": "AH",
	"v": "V",
	"w": "W",
	"x": "K S",
	"y": "IH",
	"z": "Z",
}

var arpaVowels = map[string]bool{
	"AA": true, "AE": true, "AH": true, "AO": true, "AW": true, "AY": true,
	"EH": true, "ER": true, "EY": true, "IH": true, "IY": true, "OW": true,
	"OY": true, "UH": true, "UW": true,
}

func isVowelLetter(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// LetterToSound converts an out-of-lexicon word with greedy longest-match
// rules. The first vowel carries primary stress, the rest are unstressed.
// Characters without a rule become grapheme symbols. Any non-empty word
// yields at least one symbol.
func LetterToSound(word string) []Symbol {
	w := strings.ToLower(word)
	var phones []string
	var out []Symbol

	emitPhones := func() {
		for _, p := range phones {
			out = append(out, Phone(language.English, p, NoMark))
		}
		phones = phones[:0]
	}

	for i := 0; i < len(w); {
		c := w[i]
		if c >= utf8.RuneSelf || !unicode.IsLetter(rune(c)) {
			r, size := utf8.DecodeRuneInString(w[i:])
			emitPhones()
			if r != '\'' {
				out = append(out, Grapheme(language.English, string(r)))
			}
			i += size
			continue
		}
		if ph, n, ok := contextRule(w, i); ok {
			phones = append(phones, strings.Fields(ph)...)
			i += n
			continue
		}
		for n := min(ltsMaxChunk, len(w)-i); n >= 1; n-- {
			if ph, ok := ltsRules[w[i:i+n]]; ok {
				phones = append(phones, strings.Fields(ph)...)
				i += n
				break
			}
		}
	}
	emitPhones()

	stressed := false
	for i, s := range out {
		if s.Kind != KindPhone || !arpaVowels[s.Value] {
			continue
		}
		if stressed {
			out[i].Mark = 0
		} else {
			out[i].Mark = 1
			stressed = true
		}
	}

	if len(out) == 0 && word != "" {
		r, _ := utf8.DecodeRuneInString(w)
		out = append(out, Grapheme(language.English, string(r)))
	}
	return out
}

// contextRule handles letters whose sound depends on their neighbours.
func contextRule(w string, i int) (string, int, bool) {
	c := w[i]
	next := byte(0)
	if i+1 < len(w) {
		next = w[i+1]
	}
	last := i == len(w)-1
	switch {
	case c == 'c' && (next == 'e' || next == 'i' || next == 'y'):
		return "S", 1, true
	case c == 'g' && i > 0 && (next == 'e' || next == 'i' || next == 'y'):
		return "JH", 1, true
	case c == 'y' && i == 0:
		return "Y", 1, true
	case c == 'y' && last:
		return "IY", 1, true
	case c == 'x' && i == 0:
		return "Z", 1, true
	case c == 'e' && last && i >= 2 && !isVowelLetter(w[i-1]):
		return "", 1, true
	}
	return "", 0, false
}
