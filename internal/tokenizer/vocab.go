package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrEmptyVocabulary is returned for a token list without entries.
	ErrEmptyVocabulary = errors.New("vocabulary must not be empty")
	// ErrDuplicateToken is returned when a token appears twice.
	ErrDuplicateToken = errors.New("duplicate vocabulary token")
	// ErrMissingSpecial is returned when a designated special token is absent.
	ErrMissingSpecial = errors.New("vocabulary is missing a special token")
	// ErrEmptyPath is returned when LoadVocabulary is called with an empty path.
	ErrEmptyPath = errors.New("vocabulary path must not be empty")
)

// Specials names the designated tokens of a vocabulary.
type Specials struct {
	Unknown  string `yaml:"unknown" json:"unknown"`
	Start    string `yaml:"start" json:"start"`
	End      string `yaml:"end" json:"end"`
	Pad      string `yaml:"pad" json:"pad"`
	Boundary string `yaml:"boundary" json:"boundary"`
}

// DefaultSpecials returns the special token names of StandardTokens.
func DefaultSpecials() Specials {
	return Specials{
		Unknown:  "UNK",
		Start:    DefaultStart,
		End:      DefaultEnd,
		Pad:      "_",
		Boundary: "SP",
	}
}

// WithDefaults fills empty names from DefaultSpecials.
func (s Specials) WithDefaults() Specials {
	d := DefaultSpecials()
	if s.Unknown == "" {
		s.Unknown = d.Unknown
	}
	if s.Start == "" {
		s.Start = d.Start
	}
	if s.End == "" {
		s.End = d.End
	}
	if s.Pad == "" {
		s.Pad = d.Pad
	}
	if s.Boundary == "" {
		s.Boundary = d.Boundary
	}
	return s
}

// Vocabulary is an ordered token list; a token's ID is its index. It is
// immutable after construction and safe for concurrent use.
type Vocabulary struct {
	tokens []string
	ids    map[string]int64

	unknown, start, end, pad, boundary int64
}

// NewVocabulary builds a vocabulary from tokens. Every special token must be
// present.
func NewVocabulary(tokens []string, specials Specials) (*Vocabulary, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyVocabulary
	}
	v := &Vocabulary{
		tokens: append([]string(nil), tokens...),
		ids:    make(map[string]int64, len(tokens)),
	}
	for i, tok := range v.tokens {
		if _, dup := v.ids[tok]; dup {
			return nil, fmt.Errorf("%w: %q at line %d", ErrDuplicateToken, tok, i+1)
		}
		v.ids[tok] = int64(i)
	}

	specials = specials.WithDefaults()
	for _, sp := range []struct {
		name string
		dst  *int64
	}{
		{specials.Unknown, &v.unknown},
		{specials.Start, &v.start},
		{specials.End, &v.end},
		{specials.Pad, &v.pad},
		{specials.Boundary, &v.boundary},
	} {
		id, ok := v.ids[sp.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingSpecial, sp.name)
		}
		*sp.dst = id
	}
	return v, nil
}

// Standard returns the built-in vocabulary.
func Standard() *Vocabulary {
	v, err := NewVocabulary(StandardTokens(), DefaultSpecials())
	if err != nil {
		panic(err)
	}
	return v
}

// ParseVocabulary reads one token per line. Blank lines are skipped.
func ParseVocabulary(r io.Reader, specials Specials) (*Vocabulary, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return NewVocabulary(tokens, specials)
}

// LoadVocabulary reads a vocabulary file from disk.
func LoadVocabulary(path string, specials Specials) (*Vocabulary, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary %q: %w", path, err)
	}
	defer f.Close()

	v, err := ParseVocabulary(f, specials)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", path, err)
	}
	return v, nil
}

// Size returns the number of tokens.
func (v *Vocabulary) Size() int { return len(v.tokens) }

// ID returns the ID of tok.
func (v *Vocabulary) ID(tok string) (int64, bool) {
	id, ok := v.ids[tok]
	return id, ok
}

// Token returns the token for id.
func (v *Vocabulary) Token(id int64) (string, bool) {
	if id < 0 || id >= int64(len(v.tokens)) {
		return "", false
	}
	return v.tokens[id], true
}

// Tokens returns a copy of the token list.
func (v *Vocabulary) Tokens() []string { return append([]string(nil), v.tokens...) }

func (v *Vocabulary) Unknown() int64  { return v.unknown }
func (v *Vocabulary) Start() int64    { return v.start }
func (v *Vocabulary) End() int64      { return v.end }
func (v *Vocabulary) Pad() int64      { return v.pad }
func (v *Vocabulary) Boundary() int64 { return v.boundary }
