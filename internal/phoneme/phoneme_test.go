package phoneme

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/example/go-polyglot-tts/internal/language"
)

// stubReader serves fixed Tone3 readings so sandhi tests do not depend on
// go-pinyin's heteronym ordering.
func stubReader(m map[rune]string) Reader {
	return ReaderFunc(func(r rune) (string, bool) {
		s, ok := m[r]
		return s, ok
	})
}

// ---------------------------------------------------------------------------
// Symbols and dictionaries
// ---------------------------------------------------------------------------

func TestSymbolToken(t *testing.T) {
	tests := []struct {
		sym  Symbol
		want string
	}{
		{Phone(language.English, "AH", 0), "AH0"},
		{Phone(language.English, "TH", NoMark), "TH"},
		{Phone(language.Chinese, "i0", 5), "i05"},
		{Punct(language.English, ","), ","},
		{Boundary(language.Chinese), "SP"},
		{Grapheme(language.Japanese, "こ"), "こ"},
	}
	for _, tt := range tests {
		if got := tt.sym.Token(); got != tt.want {
			t.Errorf("Token(%+v) = %q, want %q", tt.sym, got, tt.want)
		}
	}
}

func TestParsePhone(t *testing.T) {
	s := ParsePhone(language.English, "IY1")
	if s.Value != "IY" || s.Mark != 1 || s.Kind != KindPhone {
		t.Errorf("ParsePhone(IY1) = %+v", s)
	}
	if s := ParsePhone(language.English, "NG"); s.Mark != NoMark {
		t.Errorf("ParsePhone(NG).Mark = %d, want NoMark", s.Mark)
	}
}

func TestParseDictionary(t *testing.T) {
	src := `;;; comment
# another comment

HELLO HH AH0 L OW1
HELLO(2) HH EH0 L OW1
HELLO HH EH1 L OW0
READ R IY1 D
`
	d, err := ParseDictionaryString(src)
	if err != nil {
		t.Fatalf("ParseDictionaryString: %v", err)
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
	got, ok := d.Lookup("HELLO")
	if !ok || strings.Join(got, " ") != "HH AH0 L OW1" {
		t.Errorf("Lookup(HELLO) = %v, %v; want first entry", got, ok)
	}
	if !d.HasPrefix("HEL") || d.HasPrefix("XYZ") {
		t.Error("HasPrefix mismatch")
	}
}

func TestParseDictionary_Malformed(t *testing.T) {
	if _, err := ParseDictionaryString("LONELY\n"); err == nil {
		t.Fatal("want error for key without tokens")
	}
}

func TestDictionaryLookup_ReturnsCopy(t *testing.T) {
	d := BuiltinEnglish()
	first, ok := d.Lookup("HELLO")
	if !ok {
		t.Fatal("HELLO missing from builtin lexicon")
	}
	want := strings.Join(first, " ")
	first[0] = "XX"

	again, _ := d.Lookup("HELLO")
	if got := strings.Join(again, " "); got != want {
		t.Errorf("Lookup(HELLO) after caller edit = %q, want %q", got, want)
	}
	if !d.Has("HELLO") || d.Has("NOT-A-WORD") {
		t.Error("Has mismatch")
	}
}

func TestDictionaryMerge(t *testing.T) {
	a := NewDictionary(map[string][]string{"A": {"AH0"}, "B": {"B", "IY1"}})
	b := NewDictionary(map[string][]string{"A": {"EY1"}})
	m := a.Merge(b)
	if got, _ := m.Lookup("A"); got[0] != "EY1" {
		t.Errorf("Merge kept %v, want override", got)
	}
	if _, ok := m.Lookup("B"); !ok {
		t.Error("Merge dropped B")
	}
}

func TestSegment(t *testing.T) {
	d := NewDictionary(map[string][]string{
		"中国":  {"zhong1", "guo2"},
		"中国人": {"zhong1", "guo2", "ren2"},
		"人民":  {"ren2", "min2"},
	})
	got := Segment("中国人民好", d)
	want := []string{"中国人", "民", "好"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Segment = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// English
// ---------------------------------------------------------------------------

func TestEnglish(t *testing.T) {
	p := NewEnglish(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "scenario", input: "I have three cats.", want: "AY1 SP HH AE1 V SP TH R IY1 SP K AE1 T S SP ."},
		{name: "empty", input: "", want: ""},
		{name: "case insensitive", input: "HELLO world", want: "HH AH0 L OW1 SP W ER1 L D SP"},
		{name: "camel case", input: "helloWorld", want: "HH AH0 L OW1 SP W ER1 L D SP"},
		{name: "semicolon to comma", input: "yes; no", want: "Y EH1 S SP , N OW1 SP"},
		{name: "quote to dash", input: `"yes"`, want: "- Y EH1 S SP -"},
		{name: "possessive", input: "cat's", want: "K AE1 T Z SP"},
		{name: "number words", input: "twenty-one", want: "T W EH1 N T IY0 SP - W AH1 N SP"},
		{name: "ellipsis", input: "wait…", want: "W EY1 T SP …"},
		{name: "letter to sound", input: "blick", want: "B L IH1 K SP"},
		{name: "silent e", input: "vane", want: "V AE1 N SP"},
		{name: "digits become graphemes", input: "42", want: "4 2 SP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(p.Phonemize(tt.input)); got != tt.want {
				t.Errorf("Phonemize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnglish_CustomLexiconOverrides(t *testing.T) {
	d := NewDictionary(map[string][]string{"CATS": {"K", "AA1", "T", "S"}})
	p := NewEnglish(d)
	if got := Join(p.Phonemize("cats")); got != "K AA1 T S SP" {
		t.Errorf("Phonemize(cats) = %q", got)
	}
	if got := Join(p.Phonemize("three")); got != "TH R IY1 SP" {
		t.Errorf("built-in lexicon lost: %q", got)
	}
}

func TestEnglish_MissIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewEnglish(nil, WithLogger(logger))

	p.Phonemize("zorblax")
	if !strings.Contains(buf.String(), KindMiss) {
		t.Errorf("want %s log, got %q", KindMiss, buf.String())
	}
}

func TestLetterToSound_Total(t *testing.T) {
	words := []string{"a", "gh", "xyzzy", "rhythm", "naïve", "o'neil", "qqq", "e", "schtroumpf"}
	for _, w := range words {
		got := LetterToSound(w)
		if len(got) == 0 {
			t.Errorf("LetterToSound(%q) returned no symbols", w)
		}
		stressed := 0
		for _, s := range got {
			if s.Kind == KindPhone && s.Mark == 1 {
				stressed++
			}
		}
		if stressed > 1 {
			t.Errorf("LetterToSound(%q) has %d primary stresses", w, stressed)
		}
	}
}

// ---------------------------------------------------------------------------
// Mandarin
// ---------------------------------------------------------------------------

func TestSplitSyllable(t *testing.T) {
	tests := []struct {
		base, initial, final string
	}{
		{"zhi", "zh", "ir"},
		{"ri", "r", "ir"},
		{"zi", "z", "i0"},
		{"si", "s", "i0"},
		{"ju", "j", "v"},
		{"quan", "q", "van"},
		{"xue", "x", "ve"},
		{"ye", "y", "E"},
		{"yan", "y", "En"},
		{"yi", "y", "i"},
		{"ying", "y", "ing"},
		{"yu", "y", "v"},
		{"yun", "y", "vn"},
		{"you", "y", "ou"},
		{"wu", "w", "u"},
		{"wo", "w", "o"},
		{"a", "AA", "a"},
		{"ai", "AA", "ai"},
		{"er", "EE", "er"},
		{"ou", "OO", "ou"},
		{"lve", "l", "ve"},
		{"lue", "l", "ve"},
		{"nv", "n", "v"},
		{"gui", "g", "ui"},
		{"guei", "g", "ui"},
		{"huan", "h", "uan"},
		{"zhuang", "zh", "uang"},
	}
	for _, tt := range tests {
		ini, fin, ok := splitSyllable(tt.base)
		if !ok || ini != tt.initial || fin != tt.final {
			t.Errorf("splitSyllable(%q) = %q, %q, %v; want %q, %q", tt.base, ini, fin, ok, tt.initial, tt.final)
		}
	}

	for _, bad := range []string{"m", "ng", "hm", "zzz"} {
		if _, _, ok := splitSyllable(bad); ok {
			t.Errorf("splitSyllable(%q) accepted", bad)
		}
	}
}

func TestParseSyllable(t *testing.T) {
	tests := []struct {
		in   string
		base string
		tone int
	}{
		{"hao3", "hao", 3},
		{"de", "de", 5},
		{"lü4", "lv", 4},
		{"nu:3", "nv", 3},
		{"ma0", "ma", 5},
	}
	for _, tt := range tests {
		s, ok := parseSyllable(tt.in)
		if !ok || s.base != tt.base || s.tone != tt.tone {
			t.Errorf("parseSyllable(%q) = %+v, %v; want %s/%d", tt.in, s, ok, tt.base, tt.tone)
		}
	}
}

func TestChinese_Scenario(t *testing.T) {
	p := NewChinese(nil)
	got := Join(p.Phonemize("我喜欢学习"))
	if want := "w o2 x i3 h uan5 SP x ve2 x i2 SP"; got != want {
		t.Errorf("Phonemize(我喜欢学习) = %q, want %q", got, want)
	}
}

func TestChinese_Sandhi(t *testing.T) {
	reader := stubReader(map[rune]string{
		'我': "wo3", '看': "kan4", '一': "yi1", '天': "tian1", '桌': "zhuo1",
		'子': "zi3", '好': "hao3", '的': "di2", '红': "hong2", '吧': "ba1",
		'走': "zou3", '进': "jin4", '来': "lai2", '去': "qu4", '不': "bu4",
		'对': "dui4", '马': "ma3", '场': "chang3", '两': "liang3", '个': "ge4",
	})
	p := NewChinese(nil, WithReader(reader))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bu before tone four", input: "不是", want: "b u2 sh ir4 SP"},
		{name: "bu merged with next", input: "不对", want: "b u2 d ui4 SP"},
		{name: "yi before tone four", input: "一样", want: "y i2 y ang4 SP"},
		{name: "yi before tone one", input: "一天", want: "y i4 t ian1 SP"},
		{name: "ordinal yi", input: "第一", want: "d i4 y i1 SP"},
		{name: "reduplicated verb with yi", input: "看一看", want: "k an4 y i5 k an4 SP"},
		{name: "reduplication neutral", input: "看看", want: "k an4 k an5 SP"},
		{name: "dictionary reduplication kept", input: "常常", want: "ch ang2 ch ang2 SP"},
		{name: "two third tones", input: "老虎", want: "l ao2 h u3 SP"},
		{name: "three third tones split two plus one", input: "展览馆", want: "zh an2 l an2 g uan3 SP"},
		{name: "zi suffix neutral", input: "桌子", want: "zh uo1 z i05 SP"},
		{name: "structural de", input: "红的", want: "h ong2 SP d i5 SP"},
		{name: "particle", input: "走吧", want: "z ou3 SP b a5 SP"},
		{name: "directional", input: "进来", want: "j in4 l ai5 SP"},
		{name: "ge after liang", input: "两个", want: "l iang3 g e5 SP"},
		{name: "ge after yi", input: "一个", want: "y i2 g e5 SP"},
		{name: "third tones merge across words", input: "马场", want: "m a2 ch ang3 SP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(p.Phonemize(tt.input)); got != tt.want {
				t.Errorf("Phonemize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestChinese_OOVFallsBackToGraphemes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reader := stubReader(map[rune]string{'好': "hao3", '书': "shu1"})
	p := NewChinese(nil, WithReader(reader), WithLogger(logger))

	got := Join(p.Phonemize("你好龘书"))
	if want := "n i2 h ao3 SP 龘 SP sh u1 SP"; got != want {
		t.Errorf("Phonemize = %q, want %q", got, want)
	}
	if !strings.Contains(buf.String(), KindMiss) {
		t.Errorf("want %s log, got %q", KindMiss, buf.String())
	}
}

func TestChinese_PunctuationAndLatin(t *testing.T) {
	reader := stubReader(map[rune]string{'书': "shu1"})
	p := NewChinese(nil, WithReader(reader))

	got := Join(p.Phonemize("你好hello,书!世界;"))
	if want := "n i2 h ao3 SP HH AH0 L OW1 SP , sh u1 SP ! sh ir4 j ie4 SP ,"; got != want {
		t.Errorf("Phonemize = %q, want %q", got, want)
	}
	if got := p.Phonemize(""); len(got) != 0 {
		t.Errorf("Phonemize(\"\") = %v, want empty", got)
	}
}

type recordingPhonemizer struct{ got []string }

func (r *recordingPhonemizer) Language() language.Tag { return language.English }

func (r *recordingPhonemizer) Phonemize(text string) []Symbol {
	r.got = append(r.got, text)
	return []Symbol{Grapheme(language.English, "EN"), Boundary(language.English)}
}

func TestChinese_LatinRunsGoToLatinPhonemizer(t *testing.T) {
	latin := &recordingPhonemizer{}
	reader := stubReader(map[rune]string{'我': "wo3", '用': "yong4", '和': "he2"})
	p := NewChinese(nil, WithReader(reader), WithLatin(latin))

	got := Join(p.Phonemize("我用iPhone和Mac book"))
	if want := "w o3 SP y ong4 SP EN SP h e2 SP EN SP EN SP"; got != want {
		t.Errorf("Phonemize = %q, want %q", got, want)
	}
	if want := []string{"iPhone", "Mac", "book"}; !slices.Equal(latin.got, want) {
		t.Errorf("Latin runs = %q, want %q", latin.got, want)
	}
}

func TestChinese_PauseMarkers(t *testing.T) {
	reader := stubReader(map[rune]string{'书': "shu1"})
	p := NewChinese(nil, WithReader(reader))

	got := Join(p.Phonemize("你好¥书^你好￥"))
	if want := "n i2 h ao3 SP SP2 sh u1 SP SP3 n i2 h ao3 SP SP2"; got != want {
		t.Errorf("Phonemize = %q, want %q", got, want)
	}
}

func TestDefaultRegistry_ChineseReadsLatinWithEnglishLexicon(t *testing.T) {
	en := NewDictionary(map[string][]string{"WIDGET": {"W", "IH1", "JH", "AH0", "T"}})
	r := DefaultRegistry(en, nil)

	got := Join(r.Phonemize("你好widget", language.Chinese))
	if want := "n i2 h ao3 SP W IH1 JH AH0 T SP"; got != want {
		t.Errorf("Phonemize = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Japanese
// ---------------------------------------------------------------------------

func TestJapanese(t *testing.T) {
	p := NewJapanese()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "hiragana", input: "こんにちは", want: "k o N n i ch i h a"},
		{name: "katakana", input: "カタカナ", want: "k a t a k a n a"},
		{name: "palatal", input: "きょう", want: "ky o u"},
		{name: "geminate", input: "きって", want: "k i cl t e"},
		{name: "long vowel mark", input: "コーヒー", want: "k o o h i i"},
		{name: "loan onset", input: "ファイル ティー", want: "f a i r u SP t i i"},
		{name: "tsu and shi", input: "つくし", want: "ts u k u sh i"},
		{name: "punctuation", input: "はい, いいえ.", want: "h a i , SP i i e ."},
		{name: "kanji falls back", input: "日本", want: "日 本"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(p.Phonemize(tt.input)); got != tt.want {
				t.Errorf("Phonemize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJapanese_KanjiMissIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewJapanese(WithLogger(logger))

	p.Phonemize("漢字")
	if !strings.Contains(buf.String(), KindMiss) {
		t.Errorf("want %s log, got %q", KindMiss, buf.String())
	}
}

// ---------------------------------------------------------------------------
// Grapheme fallback and registry
// ---------------------------------------------------------------------------

func TestGrapheme(t *testing.T) {
	p := NewGrapheme(language.Japanese)
	got := Join(p.Phonemize("  Ab \t c\u200bD "))
	if want := "a b SP c d"; got != want {
		t.Errorf("Phonemize = %q, want %q", got, want)
	}
	if got := p.Phonemize(""); len(got) != 0 {
		t.Errorf("Phonemize(\"\") = %v, want empty", got)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(nil, nil)

	tests := []struct {
		tag  language.Tag
		want language.Tag
	}{
		{language.English, language.English},
		{language.Chinese, language.Chinese},
		{language.Japanese, language.Japanese},
		{language.Unknown, language.Unknown},
		{language.Tag("fr"), language.Unknown},
	}
	for _, tt := range tests {
		if got := r.For(tt.tag).Language(); got != tt.want {
			t.Errorf("For(%s).Language() = %s, want %s", tt.tag, got, tt.want)
		}
	}

	if _, ok := r.For(language.Japanese).(*JapanesePhonemizer); !ok {
		t.Errorf("Japanese served by %T, want kana romanizer", r.For(language.Japanese))
	}
}

func TestPhonemize_Deterministic(t *testing.T) {
	r := DefaultRegistry(nil, nil)
	inputs := map[language.Tag]string{
		language.English:  "Hello world, this is speech.",
		language.Chinese:  "今天天气很好,我们去学习.",
		language.Japanese: "こんにちは 世界",
	}
	for tag, in := range inputs {
		a := Join(r.Phonemize(in, tag))
		b := Join(r.Phonemize(in, tag))
		if a != b {
			t.Errorf("%s not deterministic: %q vs %q", tag, a, b)
		}
	}
}
