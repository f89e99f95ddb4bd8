// Package doctor provides resource preflight checks for polytts.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/pipeline"
	"github.com/example/go-polyglot-tts/internal/resources"
	"github.com/example/go-polyglot-tts/internal/tokenizer"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// SupportedBundleMajor is the manifest version major this build reads.
const SupportedBundleMajor = 1

// LoadFunc opens a resource bundle.
type LoadFunc func(path string) (*resources.Resources, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ResourcesPath is the bundle to check; empty checks the built-in tables.
	ResourcesPath string
	// Load opens the bundle; nil uses resources.Load.
	Load LoadFunc
	// SmokeTexts maps a language to a sentence that must encode cleanly.
	// Nil uses DefaultSmokeTexts.
	SmokeTexts map[language.Tag]string
	// MaxUnknownRatio bounds unknown symbols per smoke utterance; 0 means 0.5.
	MaxUnknownRatio float64
}

// DefaultSmokeTexts returns one short sentence per language with a
// phonemizer of its own.
func DefaultSmokeTexts() map[language.Tag]string {
	return map[language.Tag]string{
		language.English: "hello",
		language.Chinese: "你好",
	}
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	load := cfg.Load
	if load == nil {
		load = resources.Load
	}
	smoke := cfg.SmokeTexts
	if smoke == nil {
		smoke = DefaultSmokeTexts()
	}
	maxUnknown := cfg.MaxUnknownRatio
	if maxUnknown <= 0 {
		maxUnknown = 0.5
	}

	// ---- bundle path ------------------------------------------------------
	if cfg.ResourcesPath == "" {
		fmt.Fprintf(w, "%s resource bundle: built-in tables\n", PassMark)
	} else if _, err := os.Stat(cfg.ResourcesPath); err != nil {
		res.fail(fmt.Sprintf("resource bundle %q: %v", cfg.ResourcesPath, err))
		fmt.Fprintf(w, "%s resource bundle %s: not found\n", FailMark, cfg.ResourcesPath)
		return res
	} else {
		fmt.Fprintf(w, "%s resource bundle: %s\n", PassMark, cfg.ResourcesPath)
	}

	// ---- load and verify --------------------------------------------------
	r, err := load(cfg.ResourcesPath)
	if err != nil {
		res.fail(fmt.Sprintf("resource load: %v", err))
		fmt.Fprintf(w, "%s resource load: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s resource load: %s (%s)\n", PassMark, r.Name, r.Source)

	// ---- bundle version ---------------------------------------------------
	if r.Version == "" {
		fmt.Fprintf(w, "%s bundle version: unversioned\n", PassMark)
	} else if err := checkBundleVersion(r.Version); err != nil {
		res.fail(fmt.Sprintf("bundle version: %v", err))
		fmt.Fprintf(w, "%s bundle version %s: %v\n", FailMark, r.Version, err)
	} else {
		fmt.Fprintf(w, "%s bundle version: %s\n", PassMark, r.Version)
	}

	// ---- vocabulary -------------------------------------------------------
	if err := checkVocabulary(r.Vocabulary); err != nil {
		res.fail(fmt.Sprintf("vocabulary: %v", err))
		fmt.Fprintf(w, "%s vocabulary: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s vocabulary: %d tokens\n", PassMark, r.Vocabulary.Size())
	}

	// ---- lexicons ---------------------------------------------------------
	for _, tag := range language.Supported() {
		d := r.Lexicon(tag)
		if d == nil {
			continue
		}
		if d.Len() == 0 {
			res.fail(fmt.Sprintf("lexicon %s: empty", tag))
			fmt.Fprintf(w, "%s lexicon %s: empty\n", FailMark, tag)
			continue
		}
		fmt.Fprintf(w, "%s lexicon %s: %d entries\n", PassMark, tag, d.Len())
	}

	// ---- smoke utterances -------------------------------------------------
	p, err := pipeline.New(r, pipeline.DefaultOptions())
	if err != nil {
		res.fail(fmt.Sprintf("pipeline: %v", err))
		fmt.Fprintf(w, "%s pipeline: %v\n", FailMark, err)
		return res
	}
	for _, tag := range sortedTags(smoke) {
		text := smoke[tag]
		u, err := p.Prepare(context.Background(), text, tag)
		if err != nil {
			res.fail(fmt.Sprintf("smoke %s: %v", tag, err))
			fmt.Fprintf(w, "%s smoke %s: %v\n", FailMark, tag, err)
			continue
		}
		if msg := checkUtterance(u, r.Vocabulary.Size(), maxUnknown); msg != "" {
			res.fail(fmt.Sprintf("smoke %s: %s", tag, msg))
			fmt.Fprintf(w, "%s smoke %s %q: %s\n", FailMark, tag, text, msg)
			continue
		}
		fmt.Fprintf(w, "%s smoke %s: %q → %d tokens\n", PassMark, tag, text, len(u.TokenIDs))
	}

	return res
}

// checkBundleVersion accepts "1", "1.2" or "1.2.3" with a supported major.
func checkBundleVersion(ver string) error {
	major, _, err := parseMajorMinor(ver)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", ver, err)
	}
	if major != SupportedBundleMajor {
		return fmt.Errorf("requires bundle format %d, got %d", SupportedBundleMajor, major)
	}
	return nil
}

func parseMajorMinor(ver string) (major, minor int, err error) {
	parts := strings.SplitN(strings.TrimPrefix(ver, "v"), ".", 3)
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad major in %q: %w", ver, err)
	}
	if len(parts) == 1 {
		return major, 0, nil
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad minor in %q: %w", ver, err)
	}
	return major, minor, nil
}

// checkVocabulary confirms each special token resolves to its own ID.
func checkVocabulary(v *tokenizer.Vocabulary) error {
	if v == nil {
		return fmt.Errorf("missing")
	}
	ids := map[string]int64{
		"unknown":  v.Unknown(),
		"start":    v.Start(),
		"end":      v.End(),
		"boundary": v.Boundary(),
	}
	seen := map[int64]string{}
	for _, name := range []string{"unknown", "start", "end", "boundary"} {
		id := ids[name]
		if id < 0 || id >= int64(v.Size()) {
			return fmt.Errorf("%s token id %d out of range", name, id)
		}
		if other, dup := seen[id]; dup {
			return fmt.Errorf("%s and %s share id %d", other, name, id)
		}
		seen[id] = name
	}
	return nil
}

// checkUtterance returns a failure message or "".
func checkUtterance(u pipeline.Utterance, size int, maxUnknown float64) string {
	if len(u.TokenIDs) != len(u.Symbols)+tokenizer.FramingTokens {
		return fmt.Sprintf("%d ids for %d symbols", len(u.TokenIDs), len(u.Symbols))
	}
	for _, id := range u.TokenIDs {
		if id < 0 || id >= int64(size) {
			return fmt.Sprintf("id %d out of range", id)
		}
	}
	if len(u.Symbols) == 0 {
		return "no symbols"
	}
	if ratio := float64(u.UnknownSymbols) / float64(len(u.Symbols)); ratio > maxUnknown {
		return fmt.Sprintf("%d of %d symbols unknown", u.UnknownSymbols, len(u.Symbols))
	}
	return ""
}

func sortedTags(m map[language.Tag]string) []language.Tag {
	tags := make([]language.Tag, 0, len(m))
	for tag := range m {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
