package language

import "unicode"

// Detection is the result of a detector call.
type Detection struct {
	Tag        Tag
	Confidence float64
}

// Detector classifies text into a language. Implementations must be safe
// for concurrent use.
type Detector interface {
	Detect(text string) (Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(text string) (Detection, error)

// Detect calls f(text).
func (f DetectorFunc) Detect(text string) (Detection, error) {
	return f(text)
}

// ScriptDetector classifies text by counting letters per Unicode script.
// Han characters count toward Japanese when any kana is present, toward
// Chinese otherwise. Confidence is the share of letters belonging to the
// winning script; text without letters yields Unknown with zero confidence.
type ScriptDetector struct{}

// Detect implements Detector.
func (ScriptDetector) Detect(text string) (Detection, error) {
	var han, kana, latin, other int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.Is(unicode.Latin, r):
			latin++
		case unicode.IsLetter(r):
			other++
		}
	}

	total := han + kana + latin + other
	if total == 0 {
		return Detection{Tag: Unknown}, nil
	}

	best, count := Unknown, other
	if kana > 0 {
		if kana+han > count {
			best, count = Japanese, kana+han
		}
	} else if han > count {
		best, count = Chinese, han
	}
	if latin > count {
		best, count = English, latin
	}

	return Detection{Tag: best, Confidence: float64(count) / float64(total)}, nil
}
