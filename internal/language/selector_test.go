package language

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestSelector(t *testing.T, cfg SelectorConfig, det Detector) (*Selector, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := NewSelector(cfg, det, WithLogger(logger))
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	return s, &buf
}

func fixed(tag Tag, confidence float64) Detector {
	return DetectorFunc(func(string) (Detection, error) {
		return Detection{Tag: tag, Confidence: confidence}, nil
	})
}

// ---------------------------------------------------------------------------
// Select
// ---------------------------------------------------------------------------

func TestSelect_SupportedOverrideWins(t *testing.T) {
	s, _ := newTestSelector(t, SelectorConfig{Default: English, Threshold: 0.5}, fixed(English, 1))

	if got := s.Select("hello", Chinese); got != Chinese {
		t.Errorf("Select with zh override = %q, want zh", got)
	}
}

func TestSelect_UnsupportedOverrideFallsThroughToDetector(t *testing.T) {
	s, buf := newTestSelector(t, SelectorConfig{Default: English, Threshold: 0.5}, fixed(Chinese, 0.9))

	res := s.Resolve("你好", Tag("fr"))
	if res.Tag != Chinese || res.Source != SourceDetected {
		t.Errorf("Resolve = %+v, want detected zh", res)
	}
	if !strings.Contains(buf.String(), "LanguageUnresolved") {
		t.Errorf("want warning for unsupported override, log = %q", buf.String())
	}
}

func TestSelect_LowConfidenceUsesDefaultAndWarns(t *testing.T) {
	s, buf := newTestSelector(t, SelectorConfig{Default: Chinese, Threshold: 0.8}, fixed(English, 0.6))

	res := s.Resolve("ok 好", Unknown)
	if res.Tag != Chinese || !res.Fallback() {
		t.Fatalf("Resolve = %+v, want fallback to zh", res)
	}
	if res.Detected != English {
		t.Errorf("Detected = %q, want en", res.Detected)
	}
	if !strings.Contains(buf.String(), "language unresolved") {
		t.Errorf("want fallback warning, log = %q", buf.String())
	}
}

func TestSelect_SilentFallbackSuppressesLowConfidenceWarning(t *testing.T) {
	cfg := SelectorConfig{Default: Chinese, Threshold: 0.8, SilentFallback: true}
	s, buf := newTestSelector(t, cfg, fixed(English, 0.6))

	if got := s.Select("ok 好", Unknown); got != Chinese {
		t.Fatalf("Select = %q, want zh", got)
	}
	if buf.Len() != 0 {
		t.Errorf("want no log output, got %q", buf.String())
	}
}

func TestSelect_UnsupportedDetectionAlwaysWarns(t *testing.T) {
	cfg := SelectorConfig{Default: English, Threshold: 0.1, SilentFallback: true}
	s, buf := newTestSelector(t, cfg, fixed(Tag("de"), 0.99))

	if got := s.Select("Guten Tag", Unknown); got != English {
		t.Fatalf("Select = %q, want en", got)
	}
	if buf.Len() == 0 {
		t.Error("want warning for unsupported detection")
	}
}

func TestSelect_DetectorErrorUsesDefault(t *testing.T) {
	det := DetectorFunc(func(string) (Detection, error) {
		return Detection{}, errors.New("boom")
	})
	s, _ := newTestSelector(t, SelectorConfig{Default: Japanese, Threshold: 0.5}, det)

	res := s.Resolve("anything", Unknown)
	if res.Tag != Japanese || !strings.Contains(res.Reason, "boom") {
		t.Errorf("Resolve = %+v, want ja fallback mentioning detector error", res)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	s, _ := newTestSelector(t, SelectorConfig{Default: English, Threshold: 0.6}, nil)

	inputs := []string{"I have 3 cats.", "我喜欢学习", "ひらがなと漢字", "", "1234"}
	for _, in := range inputs {
		first := s.Resolve(in, Unknown)
		for range 5 {
			if again := s.Resolve(in, Unknown); again != first {
				t.Fatalf("Resolve(%q) not deterministic: %+v vs %+v", in, first, again)
			}
		}
	}
}

func TestNewSelector_RejectsUnsupportedDefault(t *testing.T) {
	_, err := NewSelector(SelectorConfig{Default: Tag("fr")}, nil)
	if !errors.Is(err, ErrInvalidDefault) {
		t.Errorf("err = %v, want ErrInvalidDefault", err)
	}
}

func TestNewSelector_NilLoggerKeepsDefault(t *testing.T) {
	s, err := NewSelector(SelectorConfig{Default: English, Threshold: 0.9}, fixed(Chinese, 0.1), WithLogger(nil))
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	// The low-confidence path logs; it must not dereference a nil logger.
	if got := s.Select("你好", Unknown); got != English {
		t.Errorf("Select = %q, want en fallback", got)
	}
}

func TestNewSelector_RejectsThresholdOutOfRange(t *testing.T) {
	if _, err := NewSelector(SelectorConfig{Default: English, Threshold: 1.5}, nil); err == nil {
		t.Error("want error for threshold 1.5")
	}
}

// ---------------------------------------------------------------------------
// ScriptDetector
// ---------------------------------------------------------------------------

func TestScriptDetector(t *testing.T) {
	cases := []struct {
		text    string
		want    Tag
		minConf float64
	}{
		{"I have three cats.", English, 1},
		{"我喜欢学习", Chinese, 1},
		{"これは日本語です", Japanese, 1},
		{"包含了AC到", Chinese, 0.6},
		{"12345 !!", Unknown, 0},
	}
	for _, c := range cases {
		det, err := ScriptDetector{}.Detect(c.text)
		if err != nil {
			t.Fatalf("Detect(%q): %v", c.text, err)
		}
		if det.Tag != c.want {
			t.Errorf("Detect(%q).Tag = %q, want %q", c.text, det.Tag, c.want)
		}
		if det.Confidence < c.minConf {
			t.Errorf("Detect(%q).Confidence = %.2f, want >= %.2f", c.text, det.Confidence, c.minConf)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Tag{
		"":        Unknown,
		"EN":      English,
		"english": English,
		"zh_CN":   Chinese,
		"cmn":     Chinese,
		"ja":      Japanese,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := Parse("klingon"); err == nil {
		t.Error("Parse(klingon) want error")
	}
}
