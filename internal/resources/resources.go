// Package resources loads the immutable linguistic resources shared by
// every utterance: the token vocabulary, per-language lexicons and extra
// abbreviations.
//
// A resource bundle is a directory or zip archive with a manifest.yaml at
// its root:
//
//	name: polyglot-base
//	version: "1"
//	vocabulary:
//	  file: vocab.txt
//	  sha256: 4f2c...
//	  specials: {unknown: UNK, start: <bos>, end: <eos>, pad: _, boundary: SP}
//	lexicons:
//	  en: {file: en.dict}
//	  zh: {file: zh.dict}
//	abbreviations:
//	  en: {approx.: approximately}
//
// Files without a checksum are loaded unverified. Omitted vocabulary selects
// the built-in inventory.
package resources

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/phoneme"
	"github.com/example/go-polyglot-tts/internal/text"
	"github.com/example/go-polyglot-tts/internal/tokenizer"
)

// ManifestName is the manifest file at the bundle root.
const ManifestName = "manifest.yaml"

var (
	// ErrLoad wraps every failure to load a resource bundle.
	ErrLoad = errors.New("resource load failed")
	// ErrAlreadyLoaded is returned by a second Init.
	ErrAlreadyLoaded = errors.New("resources already initialized")
	// ErrNotLoaded is returned by Global before Init.
	ErrNotLoaded = errors.New("resources not initialized")
)

// Manifest describes a resource bundle.
type Manifest struct {
	Name          string                       `yaml:"name"`
	Version       string                       `yaml:"version"`
	Vocabulary    VocabularyFile               `yaml:"vocabulary"`
	Lexicons      map[string]File              `yaml:"lexicons"`
	Abbreviations map[string]map[string]string `yaml:"abbreviations"`
}

// File names a bundle member and its optional checksum.
type File struct {
	Path   string `yaml:"file"`
	SHA256 string `yaml:"sha256"`
}

// VocabularyFile is the vocabulary member plus its special token names.
type VocabularyFile struct {
	File     `yaml:",inline"`
	Specials tokenizer.Specials `yaml:"specials"`
}

// Resources is the loaded, read-only bundle. Lexicons and abbreviation
// tables are reached through accessors so callers cannot alter them.
type Resources struct {
	Name       string
	Version    string
	Source     string
	Vocabulary *tokenizer.Vocabulary

	lexicons      map[language.Tag]*phoneme.Dictionary
	abbreviations map[language.Tag]map[string]string
}

// Builtin returns resources backed by the compiled-in tables.
func Builtin() *Resources {
	return &Resources{
		Name:       "builtin",
		Source:     "builtin",
		Vocabulary: tokenizer.Standard(),
		lexicons: map[language.Tag]*phoneme.Dictionary{
			language.English: phoneme.BuiltinEnglish(),
			language.Chinese: phoneme.BuiltinChinese(),
		},
	}
}

// Load reads a bundle from a directory or zip archive. An empty path
// returns Builtin().
func Load(p string) (*Resources, error) {
	if p == "" {
		return Builtin(), nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if info.IsDir() {
		return loadFS(os.DirFS(p), p)
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %q: %w", ErrLoad, p, err)
	}
	defer zr.Close()

	return loadFS(&zr.Reader, p)
}

// LoadFS reads a bundle from fsys; source labels errors and logs.
func LoadFS(fsys fs.FS, source string) (*Resources, error) {
	return loadFS(fsys, source)
}

func loadFS(fsys fs.FS, source string) (*Resources, error) {
	raw, err := fs.ReadFile(fsys, ManifestName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read %s: %w", ErrLoad, source, ManifestName, err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, source, err)
	}

	r := &Resources{
		Name:          m.Name,
		Version:       m.Version,
		Source:        source,
		lexicons:      make(map[language.Tag]*phoneme.Dictionary),
		abbreviations: make(map[language.Tag]map[string]string),
	}

	if m.Vocabulary.Path == "" {
		r.Vocabulary = tokenizer.Standard()
	} else {
		data, err := readVerified(fsys, m.Vocabulary.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, source, err)
		}
		r.Vocabulary, err = tokenizer.ParseVocabulary(bytes.NewReader(data), m.Vocabulary.Specials)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: vocabulary %q: %w", ErrLoad, source, m.Vocabulary.Path, err)
		}
	}

	for _, name := range sortedKeys(m.Lexicons) {
		tag, err := supportedTag(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: lexicon: %w", ErrLoad, source, err)
		}
		f := m.Lexicons[name]
		data, err := readVerified(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, source, err)
		}
		d, err := phoneme.ParseDictionary(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: lexicon %q: %w", ErrLoad, source, f.Path, err)
		}
		r.lexicons[tag] = d
	}

	for name, table := range m.Abbreviations {
		tag, err := supportedTag(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: abbreviations: %w", ErrLoad, source, err)
		}
		r.abbreviations[tag] = maps.Clone(table)
	}

	return r, nil
}

// ParseManifest decodes manifest YAML, rejecting unknown fields.
func ParseManifest(raw []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("parse %s: %w", ManifestName, err)
	}
	return m, nil
}

func supportedTag(name string) (language.Tag, error) {
	tag, err := language.Parse(name)
	if err != nil {
		return language.Unknown, err
	}
	if !tag.IsSupported() {
		return language.Unknown, fmt.Errorf("unsupported language %q", name)
	}
	return tag, nil
}

func readVerified(fsys fs.FS, f File) ([]byte, error) {
	name := path.Clean(strings.TrimPrefix(f.Path, "/"))
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid member path %q", f.Path)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", f.Path, err)
	}
	if f.SHA256 != "" {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, f.SHA256) {
			return nil, fmt.Errorf("checksum mismatch for %s: expected %s got %s", f.Path, strings.ToLower(f.SHA256), got)
		}
	}
	return data, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lexicon returns the bundle's lexicon for tag, or nil. Dictionaries are
// immutable, so the bundle's own value is returned.
func (r *Resources) Lexicon(tag language.Tag) *phoneme.Dictionary {
	return r.lexicons[tag]
}

// Abbreviations returns a copy of the bundle's abbreviation table for tag,
// or nil.
func (r *Resources) Abbreviations(tag language.Tag) map[string]string {
	return maps.Clone(r.abbreviations[tag])
}

// WithLexicons returns a copy of r whose lexicons are replaced by lex.
// The map is copied; r is unchanged.
func (r *Resources) WithLexicons(lex map[language.Tag]*phoneme.Dictionary) *Resources {
	out := *r
	out.lexicons = maps.Clone(lex)
	return &out
}

// Registry builds the phonemizer registry over the bundle's lexicons.
func (r *Resources) Registry(opts ...phoneme.Option) *phoneme.Registry {
	return phoneme.DefaultRegistry(r.Lexicon(language.English), r.Lexicon(language.Chinese), opts...)
}

// Encoder builds a token encoder over the bundle's vocabulary.
func (r *Resources) Encoder(opts ...tokenizer.Option) *tokenizer.Encoder {
	return tokenizer.NewEncoder(r.Vocabulary, opts...)
}

// NormalizerOptions adds the bundle's abbreviation tables.
func (r *Resources) NormalizerOptions() []text.Option {
	var opts []text.Option
	for _, tag := range language.Supported() {
		if table := r.Abbreviations(tag); len(table) > 0 {
			opts = append(opts, text.WithAbbreviations(tag, table))
		}
	}
	return opts
}

var (
	globalMu sync.Mutex
	global   *Resources
)

// Init loads p and installs it as the process-wide bundle. It succeeds at
// most once.
func Init(p string) (*Resources, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil, ErrAlreadyLoaded
	}
	r, err := Load(p)
	if err != nil {
		return nil, err
	}
	global = r
	return r, nil
}

// Global returns the bundle installed by Init.
func Global() (*Resources, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil, ErrNotLoaded
	}
	return global, nil
}

// resetGlobal is for tests.
func resetGlobal() {
	globalMu.Lock()
	global = nil
	globalMu.Unlock()
}
