package phoneme

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
)

// Reader returns the Tone3 pinyin reading of one Han character, e.g.
// "hao3". A reading without a tone digit is neutral.
type Reader interface {
	Read(r rune) (string, bool)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(r rune) (string, bool)

func (f ReaderFunc) Read(r rune) (string, bool) { return f(r) }

// PinyinReader reads characters with go-pinyin's default (most frequent)
// heteronym.
func PinyinReader() Reader {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone3
	args.Fallback = func(rune, pinyin.Args) []string { return nil }
	return ReaderFunc(func(r rune) (string, bool) {
		if r == '嗯' {
			r = '恩'
		}
		pys := pinyin.Pinyin(string(r), args)
		if len(pys) == 0 || len(pys[0]) == 0 || pys[0][0] == "" {
			return "", false
		}
		return pys[0][0], true
	})
}

// parseSyllable splits "hao3" into base and tone. ü spellings become v.
func parseSyllable(s string) (syllable, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("ü", "v", "u:", "v").Replace(s)
	if s == "" {
		return syllable{}, false
	}
	tone := 5
	if c := s[len(s)-1]; c >= '0' && c <= '9' {
		if c >= '1' && c <= '5' {
			tone = int(c - '0')
		}
		s = s[:len(s)-1]
	}
	if s == "" {
		return syllable{}, false
	}
	return syllable{base: s, tone: tone}, true
}

var pinyinInitials = []string{
	"zh", "ch", "sh",
	"b", "p", "m", "f", "d", "t", "n", "l", "g", "k", "h",
	"j", "q", "x", "r", "z", "c", "s", "y", "w",
}

var opencpopFinals = wordSet(`a ai an ang ao e ei en eng er i i0 ir ia ian iang iao ie in ing
	iong iu o ong ou u ua uai uan uang ui un uo v van ve vn E En`)

// splitSyllable maps a toneless pinyin syllable onto the opencpop strict
// initial and final. Zero-initial a/e/o syllables take the AA/EE/OO
// initials.
func splitSyllable(base string) (initial, final string, ok bool) {
	for _, ini := range pinyinInitials {
		if rest, found := strings.CutPrefix(base, ini); found && rest != "" {
			initial, final = ini, rest
			break
		}
	}

	switch initial {
	case "":
		switch base[0] {
		case 'a':
			initial = "AA"
		case 'e':
			initial = "EE"
		case 'o':
			initial = "OO"
		default:
			return "", "", false
		}
		final = base
	case "y":
		switch final {
		case "e":
			final = "E"
		case "an":
			final = "En"
		case "i", "in", "ing":
		default:
			if strings.HasPrefix(final, "u") {
				final = "v" + final[1:]
			}
		}
	case "w":
	case "j", "q", "x":
		if strings.HasPrefix(final, "u") {
			final = "v" + final[1:]
		}
	case "zh", "ch", "sh", "r":
		if final == "i" {
			final = "ir"
		}
	case "z", "c", "s":
		if final == "i" {
			final = "i0"
		}
	case "l", "n":
		if final == "ue" {
			final = "ve"
		}
	}

	switch final {
	case "iou":
		final = "iu"
	case "uei":
		final = "ui"
	case "uen":
		final = "un"
	}

	if _, valid := opencpopFinals[final]; !valid {
		return "", "", false
	}
	return initial, final, true
}
