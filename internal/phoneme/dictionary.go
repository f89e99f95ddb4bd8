package phoneme

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"
)

// ErrDictionary reports a malformed dictionary source.
var ErrDictionary = errors.New("phoneme: invalid dictionary")

// Dictionary maps a key (an upper-cased English word or a Mandarin phrase)
// to its pronunciation tokens. It is immutable after construction and safe
// for concurrent use.
type Dictionary struct {
	entries  map[string][]string
	prefixes map[string]struct{}
	maxRunes int
}

// NewDictionary builds a dictionary from key/token pairs.
func NewDictionary(entries map[string][]string) *Dictionary {
	d := &Dictionary{
		entries:  make(map[string][]string, len(entries)),
		prefixes: make(map[string]struct{}),
	}
	for k, v := range entries {
		d.add(k, v)
	}
	return d
}

func (d *Dictionary) add(key string, tokens []string) {
	if key == "" || len(tokens) == 0 {
		return
	}
	d.entries[key] = append([]string(nil), tokens...)
	n := 0
	for i := range key {
		if n > 0 {
			d.prefixes[key[:i]] = struct{}{}
		}
		n++
	}
	d.prefixes[key] = struct{}{}
	if n > d.maxRunes {
		d.maxRunes = n
	}
}

// ParseDictionary reads the line format
//
//	KEY tok tok tok
//
// Blank lines and lines starting with "#" or ";;;" are skipped. Alternate
// pronunciations written as KEY(2) are ignored; the first entry for a key
// wins.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	d := NewDictionary(nil)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, ";;;") {
			continue
		}
		fields := strings.Fields(s)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: want key and at least one token", ErrDictionary, line)
		}
		key := fields[0]
		if i := strings.IndexByte(key, '('); i > 0 && strings.HasSuffix(key, ")") {
			continue
		}
		if _, dup := d.entries[key]; dup {
			continue
		}
		d.add(key, fields[1:])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionary, err)
	}
	return d, nil
}

// ParseDictionaryString is ParseDictionary over a string.
func ParseDictionaryString(s string) (*Dictionary, error) {
	return ParseDictionary(strings.NewReader(s))
}

// Lookup returns a copy of the tokens for key.
func (d *Dictionary) Lookup(key string) ([]string, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.entries[key]
	return slices.Clone(v), ok
}

// Has reports whether key has an entry.
func (d *Dictionary) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.entries[key]
	return ok
}

// HasPrefix reports whether some key starts with p.
func (d *Dictionary) HasPrefix(p string) bool {
	if d == nil {
		return false
	}
	_, ok := d.prefixes[p]
	return ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Merge returns a dictionary holding d's entries overlaid by other's.
func (d *Dictionary) Merge(other *Dictionary) *Dictionary {
	out := NewDictionary(nil)
	if d != nil {
		for k, v := range d.entries {
			out.add(k, v)
		}
	}
	if other != nil {
		for k, v := range other.entries {
			out.add(k, v)
		}
	}
	return out
}

func runeCount(s string) int { return utf8.RuneCountInString(s) }
