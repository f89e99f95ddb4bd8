package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures and logged conditions.
type Kind string

const (
	// Recoverable: logged by the stage that hits them, never returned.
	KindLanguageUnresolved            Kind = "LanguageUnresolved"
	KindNormalizationPatternUnmatched Kind = "NormalizationPatternUnmatched"
	KindPhonemizationMiss             Kind = "PhonemizationMiss"
	KindEncodingUnknownSymbol         Kind = "EncodingUnknownSymbol"

	// Fatal for the utterance.
	KindInvalidResampleSpec Kind = "InvalidResampleSpec"
	KindInference           Kind = "Inference"
	KindWrite               Kind = "Write"
	KindCanceled            Kind = "Canceled"

	// Fatal at start.
	KindResourceLoadFailure Kind = "ResourceLoadFailure"
)

// Recoverable reports whether k is logged rather than returned.
func (k Kind) Recoverable() bool {
	switch k {
	case KindLanguageUnresolved, KindNormalizationPatternUnmatched,
		KindPhonemizationMiss, KindEncodingUnknownSymbol:
		return true
	}
	return false
}

// Error is a stage failure for one utterance.
type Error struct {
	Kind  Kind
	Stage State
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s at %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: k})
// tests the classification.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Stage == 0 || t.Stage == e.Stage)
}

func stageError(kind Kind, stage State, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
