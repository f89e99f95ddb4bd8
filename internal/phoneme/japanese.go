package phoneme

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/example/go-polyglot-tts/internal/language"
)

// JapanesePhonemizer romanizes kana into the mora units of the symbol
// inventory: consonants such as "k", "ky", "ts" and "sh", the five vowels,
// "N" for the moraic nasal and "cl" for the geminate stop. A long vowel
// mark repeats the preceding vowel. Kanji have no reading table and fall
// back to grapheme symbols, logged as misses. Whitespace runs become a
// single boundary, as in the grapheme variant.
type JapanesePhonemizer struct {
	log *slog.Logger
}

// NewJapanese returns the Japanese variant.
func NewJapanese(opts ...Option) *JapanesePhonemizer {
	o := buildOptions(opts)
	return &JapanesePhonemizer{log: o.log}
}

func (j *JapanesePhonemizer) Language() language.Tag { return language.Japanese }

var japanesePunct = map[rune]string{
	',': ",", '.': ".", '!': "!", '?': "?", '…': "…", '-': "-",
	';': ",", ':': ",", '"': "-", '\'': "-",
}

// kanaMora holds single kana, hiragana form.
var kanaMora = map[rune]string{
	'あ': "a", 'い': "i", 'う': "u", 'え': "e", 'お': "o",
	'ぁ': "a", 'ぃ': "i", 'ぅ': "u", 'ぇ': "e", 'ぉ': "o",
	'か': "k a", 'き': "k i", 'く': "k u", 'け': "k e", 'こ': "k o",
	'が': "g a", 'ぎ': "g i", 'ぐ': "g u", 'げ': "g e", 'ご': "g o",
	'さ': "s a", 'し': "sh i", 'す': "s u", 'せ': "s e", 'そ': "s o",
	'ざ': "z a", 'じ': "j i", 'ず': "z u", 'ぜ': "z e", 'ぞ': "z o",
	'た': "t a", 'ち': "ch i", 'つ': "ts u", 'て': "t e", 'と': "t o",
	'だ': "d a", 'ぢ': "j i", 'づ': "z u", 'で': "d e", 'ど': "d o",
	'な': "n a", 'に': "n i", 'ぬ': "n u", 'ね': "n e", 'の': "n o",
	'は': "h a", 'ひ': "h i", 'ふ': "f u", 'へ': "h e", 'ほ': "h o",
	'ば': "b a", 'び': "b i", 'ぶ': "b u", 'べ': "b e", 'ぼ': "b o",
	'ぱ': "p a", 'ぴ': "p i", 'ぷ': "p u", 'ぺ': "p e", 'ぽ': "p o",
	'ま': "m a", 'み': "m i", 'む': "m u", 'め': "m e", 'も': "m o",
	'や': "y a", 'ゆ': "y u", 'よ': "y o",
	'ゃ': "y a", 'ゅ': "y u", 'ょ': "y o",
	'ら': "r a", 'り': "r i", 'る': "r u", 'れ': "r e", 'ろ': "r o",
	'わ': "w a", 'ゎ': "w a", 'ゐ': "i", 'ゑ': "e", 'を': "o",
	'ゔ': "v u",
	'ん': "N", 'っ': "cl",
}

// palatal maps a kana that takes a small ya/yu/yo to its palatal consonant.
var palatal = map[rune]string{
	'き': "ky", 'ぎ': "gy", 'し': "sh", 'じ': "j", 'ち': "ch", 'ぢ': "j",
	'に': "ny", 'ひ': "hy", 'び': "by", 'ぴ': "py", 'み': "my", 'り': "ry",
}

// smallVowel maps the small kana that combine with a preceding consonant
// kana to the vowel they contribute.
var smallVowel = map[rune]string{
	'ゃ': "a", 'ゅ': "u", 'ょ': "o",
	'ぁ': "a", 'ぃ': "i", 'ぅ': "u", 'ぇ': "e", 'ぉ': "o",
}

// loanOnset gives the consonant a kana keeps before a small vowel in loan
// spellings such as ファ, ティ and ウェ.
var loanOnset = map[rune]string{
	'ふ': "f", 'て': "t", 'で': "d", 'と': "t", 'ど': "d", 'う': "w",
	'し': "sh", 'じ': "j", 'ち': "ch", 'つ': "ts", 'ゔ': "v",
}

func (j *JapanesePhonemizer) Phonemize(text string) []Symbol {
	var out []Symbol
	space := false
	vowel := ""

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := toHiragana(rs[i])
		switch {
		case unicode.IsSpace(r) || unicode.Is(unicode.Pc, r):
			space = true
			continue
		case unicode.Is(unicode.Cf, r):
			continue
		}
		if space && len(out) > 0 {
			out = append(out, Boundary(language.Japanese))
		}
		space = false

		if r == 'ー' {
			if vowel != "" {
				out = append(out, Phone(language.Japanese, vowel, NoMark))
			}
			continue
		}

		if i+1 < len(rs) {
			if mora, ok := combined(r, toHiragana(rs[i+1])); ok {
				out, vowel = j.appendMora(out, mora)
				i++
				continue
			}
		}
		if mora, ok := kanaMora[r]; ok {
			out, vowel = j.appendMora(out, mora)
			continue
		}

		vowel = ""
		if p, ok := japanesePunct[r]; ok {
			out = append(out, Punct(language.Japanese, p))
			continue
		}
		if unicode.Is(unicode.Han, r) {
			j.log.Debug("character has no reading", "kind", KindMiss, "lang", language.Japanese.String(), "char", string(r))
		}
		out = append(out, Grapheme(language.Japanese, string(unicode.ToLower(r))))
	}
	return out
}

// combined reads a kana followed by a small kana as one mora.
func combined(r, next rune) (string, bool) {
	v, ok := smallVowel[next]
	if !ok {
		return "", false
	}
	if c, ok := palatal[r]; ok && (next == 'ゃ' || next == 'ゅ' || next == 'ょ') {
		return c + " " + v, true
	}
	if c, ok := loanOnset[r]; ok {
		return c + " " + v, true
	}
	return "", false
}

func (j *JapanesePhonemizer) appendMora(out []Symbol, mora string) ([]Symbol, string) {
	vowel := ""
	for _, u := range strings.Fields(mora) {
		out = append(out, Phone(language.Japanese, u, NoMark))
		switch u {
		case "a", "i", "u", "e", "o":
			vowel = u
		}
	}
	return out, vowel
}

// toHiragana folds katakana onto hiragana. The long vowel mark is kept.
func toHiragana(r rune) rune {
	if r >= 'ァ' && r <= 'ヴ' {
		return r - 0x60
	}
	return r
}
