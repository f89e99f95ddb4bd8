// Package language resolves which language branch processes an utterance.
//
// The supported set is closed: every Tag returned by Select is one of
// Supported(). Detection itself is delegated to a Detector; ScriptDetector
// is a deterministic built-in classifier based on Unicode script counts.
package language

import (
	"fmt"
	"strings"
)

// Tag identifies a supported language.
type Tag string

const (
	English  Tag = "en"
	Chinese  Tag = "zh"
	Japanese Tag = "ja"

	// Unknown is returned by detectors that cannot classify the input.
	Unknown Tag = ""
)

var supported = []Tag{English, Chinese, Japanese}

// Supported returns the supported language tags in a stable order.
func Supported() []Tag {
	return append([]Tag(nil), supported...)
}

// IsSupported reports whether t is in the supported set.
func (t Tag) IsSupported() bool {
	for _, s := range supported {
		if s == t {
			return true
		}
	}
	return false
}

func (t Tag) String() string {
	if t == Unknown {
		return "unknown"
	}
	return string(t)
}

// Parse maps a user supplied language name or code to a Tag.
// An empty string returns Unknown without error.
func Parse(raw string) (Tag, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", "-")
	switch s {
	case "":
		return Unknown, nil
	case "en", "eng", "english", "en-us", "en-gb":
		return English, nil
	case "zh", "cmn", "chinese", "mandarin", "zh-cn", "zh-hans":
		return Chinese, nil
	case "ja", "jpn", "japanese", "ja-jp":
		return Japanese, nil
	default:
		return Unknown, fmt.Errorf("unsupported language %q (want en|zh|ja)", raw)
	}
}
