package text

import (
	"strings"

	"github.com/example/go-polyglot-tts/internal/language"
)

// englishAbbreviations is the built-in abbreviation table.
var englishAbbreviations = map[string]string{
	"mrs.":  "missus",
	"mr.":   "mister",
	"ms.":   "miss",
	"dr.":   "doctor",
	"drs.":  "doctors",
	"st.":   "saint",
	"co.":   "company",
	"jr.":   "junior",
	"sr.":   "senior",
	"maj.":  "major",
	"gen.":  "general",
	"rev.":  "reverend",
	"lt.":   "lieutenant",
	"hon.":  "honorable",
	"sgt.":  "sergeant",
	"capt.": "captain",
	"esq.":  "esquire",
	"ltd.":  "limited",
	"col.":  "colonel",
	"ft.":   "fort",
	"prof.": "professor",
	"mt.":   "mount",
	"etc.":  "et cetera",
	"vs.":   "versus",
	"e.g.":  "for example",
	"i.e.":  "that is",
}

// EnglishRules returns the English rule set.
func EnglishRules() *RuleSet {
	rules := []Rule{
		Func("iso-date", StageNumerals,
			`\b([0-9]{4})-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])\b`, expandEnglishDate),
		Func("clock-time", StageNumerals,
			`\b([01]?[0-9]|2[0-3]):([0-5][0-9])\b`, expandEnglishTime),
		Func("digit-commas", StageNumerals, `[0-9][0-9,]+[0-9]`, func(g []string) (string, bool) {
			return strings.ReplaceAll(g[0], ",", ""), true
		}),
		Template("pounds", StageNumerals, `£([0-9]*[0-9])`, "$1 pounds"),
		Func("dollars", StageNumerals, `\$([0-9.]*[0-9])`, expandDollars),
		Template("percent", StageNumerals, `([0-9]+(?:\.[0-9]+)?)%`, "$1 percent"),
		Func("decimal", StageNumerals, `([0-9]+)\.([0-9]+)`, func(g []string) (string, bool) {
			if _, ok := parseDigits(g[1]); !ok {
				return "", false
			}
			return g[1] + " point " + spellDigits(g[2]), true
		}),
		Func("ordinal", StageNumerals, `(?i)\b([0-9]+)(st|nd|rd|th)\b`, func(g []string) (string, bool) {
			n, ok := parseDigits(g[1])
			if !ok {
				return "", false
			}
			return ordinalWords(n), true
		}),
		Template("negative", StageNumerals, `(^|\s)-([0-9])`, "${1}minus $2"),
		Func("cardinal", StageNumerals, `[0-9]+`, func(g []string) (string, bool) {
			return numberWords(g[0])
		}),
	}
	rules = append(rules, abbreviationRules(englishAbbreviations)...)
	rules = append(rules, punctuationRules()...)
	rules = append(rules, whitespaceRules()...)
	return NewRuleSet(language.English, rules...)
}

func expandEnglishDate(g []string) (string, bool) {
	month, _ := parseDigits(g[2])
	day, _ := parseDigits(g[3])
	return enMonths[month-1] + " " + ordinalWords(day) + ", " + g[1], true
}

func expandEnglishTime(g []string) (string, bool) {
	hour, _ := parseDigits(g[1])
	minute, _ := parseDigits(g[2])
	h := cardinalWords(hour)
	switch {
	case minute == 0:
		return h + " o'clock", true
	case minute < 10:
		return h + " oh " + enOnes[minute], true
	default:
		return h + " " + below100(minute), true
	}
}

// expandDollars leaves the amounts as digits for the cardinal rule.
func expandDollars(g []string) (string, bool) {
	amount := g[1]
	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return amount + " dollars", true
	}

	dollars, dok := parseDigits(parts[0])
	var cents uint64
	cok := true
	if len(parts) > 1 {
		cents, cok = parseDigits(parts[1])
	}
	if !dok && parts[0] != "" || !cok {
		return amount + " dollars", true
	}

	unit := func(n uint64, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	}
	ds := strings.TrimLeft(parts[0], "0")
	if ds == "" {
		ds = "0"
	}
	cs := ""
	if len(parts) > 1 {
		cs = strings.TrimLeft(parts[1], "0")
	}

	switch {
	case dollars > 0 && cents > 0:
		return ds + " " + unit(dollars, "dollar", "dollars") + ", " + cs + " " + unit(cents, "cent", "cents"), true
	case dollars > 0:
		return ds + " " + unit(dollars, "dollar", "dollars"), true
	case cents > 0:
		return cs + " " + unit(cents, "cent", "cents"), true
	default:
		return "zero dollars", true
	}
}
