// Package testutil provides shared fixtures and skip helpers for tests.
//
// Bundle fixtures write a resource bundle (manifest plus members) to a
// temporary directory or zip archive so loaders can be tested without
// committed binary files. Skip helpers call t.Skip with a clear reason when
// an optional prerequisite is absent.
//
// Typical usage:
//
//	func TestLoad(t *testing.T) {
//	    path := testutil.WriteBundleZip(t, testutil.MinimalBundle())
//	    ...
//	}
package testutil

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Bundle maps member paths to their contents.
type Bundle map[string]string

// MinimalVocabulary is a small vocabulary covering the MinimalBundle
// lexicons, their specials and ",.".
const MinimalVocabulary = "_\nUNK\n<bos>\n<eos>\nSP\n,\n.\nHH\nAH0\nL\nOW1\nn\ni2\nh\nao3\n"

// MinimalBundle returns a bundle with a vocabulary, an English and a
// Chinese lexicon, and one English abbreviation. Checksums in the manifest
// match the members.
func MinimalBundle() Bundle {
	en := "HELLO  HH AH0 L OW1\n"
	zh := "你好 ni3 hao3\n"
	b := Bundle{
		"vocab.txt":      MinimalVocabulary,
		"lexicon/en.txt": en,
		"lexicon/zh.txt": zh,
	}
	b["manifest.yaml"] = `name: minimal
version: "1"
vocabulary:
  file: vocab.txt
  sha256: ` + SHA256Hex(MinimalVocabulary) + `
lexicons:
  en:
    file: lexicon/en.txt
    sha256: ` + SHA256Hex(en) + `
  zh:
    file: lexicon/zh.txt
abbreviations:
  en:
    approx.: approximately
`
	return b
}

// SHA256Hex returns the hex sha256 of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// WriteBundleDir writes b under a fresh temporary directory and returns it.
func WriteBundleDir(tb testing.TB, b Bundle) string {
	tb.Helper()

	dir := tb.TempDir()
	for name, body := range b {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// WriteBundleZip writes b as a zip archive in a temporary directory and
// returns the archive path. Members are written in sorted order.
func WriteBundleZip(tb testing.TB, b Bundle) string {
	tb.Helper()

	p := filepath.Join(tb.TempDir(), "bundle.zip")
	f, err := os.Create(p)
	if err != nil {
		tb.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)

	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("zip member %s: %v", name, err)
		}
		if _, err := w.Write([]byte(b[name])); err != nil {
			tb.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("close archive: %v", err)
	}
	return p
}

// RequireResources returns the bundle path named by POLYTTS_RESOURCES and
// skips the test when it is unset or missing.
func RequireResources(tb testing.TB) string {
	tb.Helper()

	p := strings.TrimSpace(os.Getenv("POLYTTS_RESOURCES"))
	if p == "" {
		tb.Skipf("resource bundle not configured; set POLYTTS_RESOURCES to a bundle directory or zip")
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		tb.Skipf("resource bundle not found at POLYTTS_RESOURCES=%q", p)
		return ""
	}
	return p
}
