package text

import (
	"strconv"
	"strings"
)

// maxEnglishDigits bounds cardinal expansion to the quadrillions.
const maxEnglishDigits = 18

var (
	enOnes = [...]string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	enTens = [...]string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

	enScales = []struct {
		value uint64
		name  string
	}{
		{1e15, "quadrillion"},
		{1e12, "trillion"},
		{1e9, "billion"},
		{1e6, "million"},
		{1e3, "thousand"},
	}

	enOrdinalIrregular = map[string]string{
		"one": "first", "two": "second", "three": "third", "five": "fifth",
		"eight": "eighth", "nine": "ninth", "twelve": "twelfth",
	}

	enMonths = [...]string{
		"january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december",
	}
)

// parseDigits parses an ASCII digit run, rejecting runs longer than
// maxEnglishDigits after leading zeros are dropped.
func parseDigits(digits string) (uint64, bool) {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return 0, digits != ""
	}
	if len(trimmed) > maxEnglishDigits {
		return 0, false
	}
	n, err := strconv.ParseUint(trimmed, 10, 64)
	return n, err == nil
}

func below100(n uint64) string {
	if n < 20 {
		return enOnes[n]
	}
	if n%10 == 0 {
		return enTens[n/10]
	}
	return enTens[n/10] + "-" + enOnes[n%10]
}

func below1000(n uint64) string {
	h, r := n/100, n%100
	switch {
	case h == 0:
		return below100(r)
	case r == 0:
		return enOnes[h] + " hundred"
	default:
		return enOnes[h] + " hundred " + below100(r)
	}
}

// cardinalWords spells n, e.g. 1234 → "one thousand two hundred thirty-four".
func cardinalWords(n uint64) string {
	if n == 0 {
		return enOnes[0]
	}
	var parts []string
	for _, sc := range enScales {
		if n >= sc.value {
			parts = append(parts, below1000(n/sc.value), sc.name)
			n %= sc.value
		}
	}
	if n > 0 {
		parts = append(parts, below1000(n))
	}
	return strings.Join(parts, " ")
}

// yearWords reads 1000 < n < 3000 the way years are spoken.
func yearWords(n uint64) string {
	switch {
	case n == 2000:
		return "two thousand"
	case n > 2000 && n < 2010:
		return "two thousand " + enOnes[n%100]
	case n%100 == 0:
		return below100(n/100) + " hundred"
	case n%100 < 10:
		return below100(n/100) + " oh " + enOnes[n%100]
	default:
		return below100(n/100) + " " + below100(n%100)
	}
}

// numberWords expands a digit run, reading 1001–2999 year style.
func numberWords(digits string) (string, bool) {
	n, ok := parseDigits(digits)
	if !ok {
		return "", false
	}
	if n > 1000 && n < 3000 {
		return yearWords(n), true
	}
	return cardinalWords(n), true
}

// ordinalWords spells n as an ordinal, e.g. 21 → "twenty-first".
func ordinalWords(n uint64) string {
	w := cardinalWords(n)
	cut := strings.LastIndexAny(w, " -") + 1
	head, last := w[:cut], w[cut:]
	if irr, ok := enOrdinalIrregular[last]; ok {
		return head + irr
	}
	if strings.HasSuffix(last, "y") {
		return head + strings.TrimSuffix(last, "y") + "ieth"
	}
	return head + last + "th"
}

// spellDigits reads each digit separately.
func spellDigits(digits string) string {
	words := make([]string, 0, len(digits))
	for _, c := range digits {
		if c >= '0' && c <= '9' {
			words = append(words, enOnes[c-'0'])
		}
	}
	return strings.Join(words, " ")
}
