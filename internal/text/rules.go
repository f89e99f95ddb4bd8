package text

import (
	"regexp"
	"sort"
	"strings"

	"github.com/example/go-polyglot-tts/internal/language"
)

// Stage orders rules inside a RuleSet. Rules of an earlier stage always run
// before rules of a later one; inside a stage, table order is kept.
type Stage int

const (
	StageNumerals Stage = iota + 1
	StageAbbreviations
	StagePunctuation
	StageWhitespace
)

func (s Stage) String() string {
	switch s {
	case StageNumerals:
		return "numerals"
	case StageAbbreviations:
		return "abbreviations"
	case StagePunctuation:
		return "punctuation"
	case StageWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Rule is one pattern → replacement entry.
//
// A rule either carries a template Replacement (expanded with $1 style
// references) or an Expand function. Expand receives the submatches of one
// match and returns the replacement; ok=false keeps the match literally and
// reports it as unmatched.
type Rule struct {
	Name        string
	Stage       Stage
	Pattern     *regexp.Regexp
	Replacement string
	Expand      func(groups []string) (string, bool)

	// DigitBounded skips matches directly preceded or followed by an ASCII
	// digit.
	DigitBounded bool
}

// Template returns a rule replacing pattern with a fixed template.
func Template(name string, stage Stage, pattern, replacement string) Rule {
	return Rule{Name: name, Stage: stage, Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// Func returns a rule whose replacement is computed from the submatches.
func Func(name string, stage Stage, pattern string, expand func([]string) (string, bool)) Rule {
	return Rule{Name: name, Stage: stage, Pattern: regexp.MustCompile(pattern), Expand: expand}
}

// apply runs the rule over s. unmatched is called for each match kept
// literally by Expand.
func (r Rule) apply(s string, unmatched func(rule, match string)) string {
	if r.Expand == nil && !r.DigitBounded {
		return r.Pattern.ReplaceAllString(s, r.Replacement)
	}

	locs := r.Pattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		b.WriteString(s[last:start])
		last = end

		if r.DigitBounded && touchesDigit(s, start, end) {
			b.WriteString(s[start:end])
			continue
		}
		if r.Expand == nil {
			b.Write(r.Pattern.ExpandString(nil, r.Replacement, s, loc))
			continue
		}

		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		out, ok := r.Expand(groups)
		if !ok {
			if unmatched != nil {
				unmatched(r.Name, groups[0])
			}
			out = groups[0]
		}
		b.WriteString(out)
	}
	b.WriteString(s[last:])
	return b.String()
}

func touchesDigit(s string, start, end int) bool {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	return (start > 0 && isDigit(s[start-1])) || (end < len(s) && isDigit(s[end]))
}

// RuleSet is the ordered, immutable rule table of one language.
type RuleSet struct {
	lang  language.Tag
	rules []Rule
}

// NewRuleSet sorts rules by stage (stable) and returns the set.
func NewRuleSet(lang language.Tag, rules ...Rule) *RuleSet {
	sorted := append([]Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Stage < sorted[j].Stage })
	return &RuleSet{lang: lang, rules: sorted}
}

// Language returns the tag the set was built for.
func (rs *RuleSet) Language() language.Tag { return rs.lang }

// Rules returns a copy of the ordered rule table.
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule(nil), rs.rules...)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// With returns a new set holding the receiver's rules plus extra.
func (rs *RuleSet) With(extra ...Rule) *RuleSet {
	all := make([]Rule, 0, len(rs.rules)+len(extra))
	all = append(all, rs.rules...)
	all = append(all, extra...)
	return NewRuleSet(rs.lang, all...)
}

func (rs *RuleSet) apply(s string, unmatched func(rule, match string)) string {
	for _, r := range rs.rules {
		s = r.apply(s, unmatched)
	}
	return s
}
