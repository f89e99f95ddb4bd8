package text

import (
	"regexp"
	"sort"
	"strings"

	"github.com/example/go-polyglot-tts/internal/language"
)

func punctuationRules() []Rule {
	return []Rule{
		Template("ellipsis", StagePunctuation, `\.{3,}`, "…"),
		Template("double-period", StagePunctuation, `\.\.`, "."),
		Template("repeated-bang", StagePunctuation, `!{2,}`, "!"),
		Template("repeated-question", StagePunctuation, `\?{2,}`, "?"),
		Template("repeated-comma", StagePunctuation, `,{2,}`, ","),
		Template("repeated-dash", StagePunctuation, `-{2,}`, "-"),
	}
}

func whitespaceRules() []Rule {
	return []Rule{
		Template("collapse-space", StageWhitespace, `[\s\v\x{85}\p{Z}]+`, " "),
		Template("trim", StageWhitespace, `^ | $`, ""),
	}
}

// BaseRules returns the punctuation and whitespace stages shared by every
// language. Languages without numeral tables use it as is.
func BaseRules(lang language.Tag) *RuleSet {
	return NewRuleSet(lang, append(punctuationRules(), whitespaceRules()...)...)
}

func abbreviationRules(abbr map[string]string) []Rule {
	keys := make([]string, 0, len(abbr))
	for k := range abbr {
		keys = append(keys, k)
	}
	// Longer keys first so "mrs." is tried before "mr.".
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rules := make([]Rule, 0, len(keys))
	for _, k := range keys {
		pattern := `(?i)\b` + regexp.QuoteMeta(k)
		if !strings.HasSuffix(k, ".") {
			pattern += `\b`
		}
		repl := strings.ReplaceAll(abbr[k], "$", "$$")
		rules = append(rules, Template("abbr:"+k, StageAbbreviations, pattern, repl))
	}
	return rules
}
