package tokenizer

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/phoneme"
)

// ---------------------------------------------------------------------------
// Vocabulary
// ---------------------------------------------------------------------------

func TestStandard(t *testing.T) {
	v := Standard()

	if v.Size() != len(standardSymbols)+2 {
		t.Errorf("Size = %d, want %d", v.Size(), len(standardSymbols)+2)
	}
	// Inventory IDs are fixed by the acoustic model.
	for tok, want := range map[string]int64{"!": 0, ",": 1, "AA": 5, "SP": 77, "UNK": 86, "_": 95} {
		if got, ok := v.ID(tok); !ok || got != want {
			t.Errorf("ID(%q) = %d, %v; want %d", tok, got, ok, want)
		}
	}
	if tok, _ := v.Token(v.Start()); tok != DefaultStart {
		t.Errorf("Start token = %q", tok)
	}
}

func TestNewVocabulary_Errors(t *testing.T) {
	sp := Specials{Unknown: "UNK", Start: "<s>", End: "</s>", Pad: "_", Boundary: "SP"}

	tests := []struct {
		name   string
		tokens []string
		want   error
	}{
		{name: "empty", tokens: nil, want: ErrEmptyVocabulary},
		{name: "duplicate", tokens: []string{"UNK", "<s>", "</s>", "_", "SP", "a", "a"}, want: ErrDuplicateToken},
		{name: "missing special", tokens: []string{"UNK", "<s>", "</s>", "_", "a"}, want: ErrMissingSpecial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVocabulary(tt.tokens, sp)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewVocabulary error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseVocabulary(t *testing.T) {
	src := "_\nUNK\n\n<bos>\r\n<eos>\nSP\na1\n"
	v, err := ParseVocabulary(strings.NewReader(src), Specials{})
	if err != nil {
		t.Fatalf("ParseVocabulary: %v", err)
	}
	if v.Size() != 6 {
		t.Errorf("Size = %d, want 6", v.Size())
	}
	if id, _ := v.ID("a1"); id != 5 {
		t.Errorf("ID(a1) = %d, want 5", id)
	}
	if v.Pad() != 0 || v.Unknown() != 1 || v.Boundary() != 4 {
		t.Errorf("specials = pad %d unk %d boundary %d", v.Pad(), v.Unknown(), v.Boundary())
	}
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(StandardTokens(), "\n")), 0o600); err != nil {
		t.Fatal(err)
	}
	v, err := LoadVocabulary(path, DefaultSpecials())
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if v.Size() != Standard().Size() {
		t.Errorf("Size = %d, want %d", v.Size(), Standard().Size())
	}

	if _, err := LoadVocabulary("", DefaultSpecials()); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("empty path error = %v, want ErrEmptyPath", err)
	}
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing"), DefaultSpecials()); err == nil {
		t.Error("expected error for missing file")
	}
}

// ---------------------------------------------------------------------------
// Encode / Decode
// ---------------------------------------------------------------------------

func TestEncode_Framing(t *testing.T) {
	e := NewEncoder(nil)
	v := e.Vocabulary()

	ids := e.Encode(nil)
	if len(ids) != FramingTokens || ids[0] != v.Start() || ids[1] != v.End() {
		t.Errorf("Encode(nil) = %v, want [start end]", ids)
	}

	syms := phoneme.NewEnglish(nil).Phonemize("I have three cats.")
	ids = e.Encode(syms)
	if len(ids) != len(syms)+FramingTokens {
		t.Errorf("len(ids) = %d, want %d", len(ids), len(syms)+FramingTokens)
	}
	for i, id := range ids {
		if id < 0 || id >= int64(v.Size()) {
			t.Errorf("ids[%d] = %d out of range [0, %d)", i, id, v.Size())
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	e := NewEncoder(nil)
	reg := phoneme.DefaultRegistry(nil, nil)

	inputs := []struct {
		text string
		tag  language.Tag
	}{
		{"I have three cats.", language.English},
		{"hello world, what time is it?", language.English},
		{"我喜欢学习,你好!", language.Chinese},
	}
	for _, in := range inputs {
		syms := reg.Phonemize(in.text, in.tag)
		ids, unknown := e.EncodeCounted(syms)
		if unknown != 0 {
			t.Errorf("%q: %d unknown symbols", in.text, unknown)
			continue
		}
		got := strings.Join(e.Decode(ids), " ")
		if want := phoneme.Join(syms); got != want {
			t.Errorf("round trip %q:\n got  %q\n want %q", in.text, got, want)
		}
	}
}

func TestEncode_UnknownSymbol(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewEncoder(nil, WithLogger(logger))

	syms := []phoneme.Symbol{
		phoneme.Grapheme(language.Chinese, "龘"),
		phoneme.Boundary(language.Chinese),
	}
	ids, unknown := e.EncodeCounted(syms)
	if unknown != 1 {
		t.Errorf("unknown = %d, want 1", unknown)
	}
	if ids[1] != e.Vocabulary().Unknown() || ids[2] != e.Vocabulary().Boundary() {
		t.Errorf("ids = %v", ids)
	}
	if !strings.Contains(buf.String(), KindUnknownSymbol) {
		t.Errorf("want %s log, got %q", KindUnknownSymbol, buf.String())
	}
}

func TestDecode_DropsMarkersAndClampsRange(t *testing.T) {
	e := NewEncoder(nil)
	v := e.Vocabulary()
	sp, _ := v.ID("SP")

	got := e.Decode([]int64{v.Pad(), v.Start(), sp, 9999, -1, v.End(), v.Pad(), v.Pad()})
	if want := "SP UNK UNK"; strings.Join(got, " ") != want {
		t.Errorf("Decode = %q, want %q", strings.Join(got, " "), want)
	}
}

func TestDecode_KeepsPadSymbolInsideFraming(t *testing.T) {
	e := NewEncoder(nil)
	padTok, _ := e.Vocabulary().Token(e.Vocabulary().Pad())

	syms := []phoneme.Symbol{
		phoneme.Grapheme(language.English, "a"),
		phoneme.Grapheme(language.English, padTok),
		phoneme.Grapheme(language.English, "b"),
	}
	ids, unknown := e.EncodeCounted(syms)
	if unknown != 0 {
		t.Fatalf("unknown = %d, want 0", unknown)
	}
	if got, want := strings.Join(e.Decode(ids), " "), phoneme.Join(syms); got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}

func TestEncode_RoundTripConnectorPunctuation(t *testing.T) {
	e := NewEncoder(nil)
	for _, p := range []phoneme.Phonemizer{phoneme.NewEnglish(nil), phoneme.NewGrapheme(language.Japanese)} {
		syms := p.Phonemize("snake_case here")
		for _, s := range syms {
			if s.Token() == "_" {
				t.Errorf("%s: connector emitted as a symbol: %q", p.Language(), phoneme.Join(syms))
			}
		}
		ids := e.Encode(syms)
		if got, want := strings.Join(e.Decode(ids), " "), phoneme.Join(syms); got != want {
			t.Errorf("%s round trip:\n got  %q\n want %q", p.Language(), got, want)
		}
	}
}

func TestEncoder_ImplementsTokenizer(t *testing.T) {
	var _ Tokenizer = NewEncoder(nil)
}
