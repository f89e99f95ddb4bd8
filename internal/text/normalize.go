// Package text turns raw input into the canonical text the phonemizers
// expect, and chunks long input at sentence boundaries.
//
// Normalization runs in a fixed order:
//
//  0. canonical form: line endings become \n, Unicode NFKC folds full-width
//     and compatibility characters, and quote, dash and CJK punctuation
//     variants are folded to one ASCII form each.
//  1. numerals: language specific expansion of currency, dates, times,
//     percentages, ranges, decimals, ordinals and cardinals.
//  2. abbreviations.
//  3. punctuation: runs of repeated punctuation collapse and "..." becomes
//     a single ellipsis.
//  4. whitespace: runs become a single space and the ends are trimmed.
//
// No stage produces input for an earlier one, so Normalize is idempotent.
// Numerals a rule cannot expand are kept literally.
package text

import (
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/example/go-polyglot-tts/internal/language"
)

// Normalizer applies the per-language rule sets. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	sets map[language.Tag]*RuleSet
	base *RuleSet
	log  *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for unmatched numeral reports. A nil
// logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

// WithRuleSet replaces the rule set used for rs.Language().
func WithRuleSet(rs *RuleSet) Option {
	return func(n *Normalizer) { n.sets[rs.Language()] = rs }
}

// WithAbbreviations appends abbreviation rules for lang. Keys are matched
// case-insensitively at a word start, including any trailing period.
func WithAbbreviations(lang language.Tag, abbr map[string]string) Option {
	return func(n *Normalizer) {
		if len(abbr) == 0 {
			return
		}
		rs, ok := n.sets[lang]
		if !ok {
			rs = n.base
		}
		n.sets[lang] = rs.With(abbreviationRules(abbr)...)
	}
}

// NewNormalizer returns a Normalizer with the built-in rule sets.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		sets: map[language.Tag]*RuleSet{
			language.English:  EnglishRules(),
			language.Chinese:  ChineseRules(),
			language.Japanese: BaseRules(language.Japanese),
		},
		base: BaseRules(language.Unknown),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RuleSet returns the rule set applied for lang.
func (n *Normalizer) RuleSet(lang language.Tag) *RuleSet {
	if rs, ok := n.sets[lang]; ok {
		return rs
	}
	return n.base
}

// Normalize returns the canonical form of s for lang. Empty or
// whitespace-only input yields "".
func (n *Normalizer) Normalize(s string, lang language.Tag) string {
	s = Canonicalize(s)
	if strings.TrimSpace(s) == "" {
		return ""
	}

	return n.RuleSet(lang).apply(s, func(rule, match string) {
		n.log.Debug("numeral left literal",
			slog.String("kind", "NormalizationPatternUnmatched"),
			slog.String("lang", lang.String()),
			slog.String("rule", rule),
			slog.String("text", match),
		)
	})
}

var foldReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",

	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"«", `"`, "»", `"`,
	"「", `"`, "」", `"`, "『", `"`, "』", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",

	"‐", "-", "‑", "-", "‒", "-", "–", "-",
	"—", "-", "―", "-", "−", "-",
	"〜", "~",

	"。", ".", "、", ",",
)

// Canonicalize applies stage 0 of normalization.
func Canonicalize(s string) string {
	return foldReplacer.Replace(norm.NFKC.String(s))
}
