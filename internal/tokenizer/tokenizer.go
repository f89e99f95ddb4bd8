// Package tokenizer maps phoneme symbols to the integer IDs consumed by the
// acoustic model. Encoding is total: symbols missing from the vocabulary
// encode as the unknown ID and are counted, never rejected.
package tokenizer

import (
	"log/slog"

	"github.com/example/go-polyglot-tts/internal/phoneme"
)

// FramingTokens is the number of IDs Encode adds around the symbols: one
// start and one end marker.
const FramingTokens = 2

// KindUnknownSymbol is the log kind for a symbol outside the vocabulary.
const KindUnknownSymbol = "EncodingUnknownSymbol"

// Tokenizer encodes symbol sequences into model token IDs.
type Tokenizer interface {
	// Encode returns start + one ID per symbol + end.
	Encode(symbols []phoneme.Symbol) []int64
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger for unknown-symbol reports.
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		if l != nil {
			e.log = l
		}
	}
}

// Encoder implements Tokenizer over a Vocabulary.
type Encoder struct {
	vocab *Vocabulary
	log   *slog.Logger
}

// NewEncoder returns an encoder for v; a nil v selects Standard().
func NewEncoder(v *Vocabulary, opts ...Option) *Encoder {
	if v == nil {
		v = Standard()
	}
	e := &Encoder{vocab: v, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary returns the encoder's vocabulary.
func (e *Encoder) Vocabulary() *Vocabulary { return e.vocab }

// Encode implements Tokenizer.
func (e *Encoder) Encode(symbols []phoneme.Symbol) []int64 {
	ids, _ := e.EncodeCounted(symbols)
	return ids
}

// EncodeCounted is Encode that also reports how many symbols mapped to the
// unknown ID.
func (e *Encoder) EncodeCounted(symbols []phoneme.Symbol) ([]int64, int) {
	ids := make([]int64, 0, len(symbols)+FramingTokens)
	ids = append(ids, e.vocab.Start())

	unknown := 0
	for _, s := range symbols {
		if s.Kind == phoneme.KindBoundary {
			ids = append(ids, e.vocab.Boundary())
			continue
		}
		id, ok := e.vocab.ID(s.Token())
		if !ok {
			unknown++
			e.log.Debug("symbol not in vocabulary",
				"kind", KindUnknownSymbol,
				"symbol", s.Token(),
				"lang", s.Lang.String())
			id = e.vocab.Unknown()
		}
		ids = append(ids, id)
	}

	return append(ids, e.vocab.End()), unknown
}

// Decode maps IDs back to tokens, dropping the start and end markers and
// any pad IDs outside them. A pad ID between start and end is a symbol and
// decodes as one. IDs outside the vocabulary decode as the unknown token.
func (e *Encoder) Decode(ids []int64) []string {
	out := make([]string, 0, len(ids))
	unk, _ := e.vocab.Token(e.vocab.Unknown())
	inside := false
	for _, id := range ids {
		switch {
		case id == e.vocab.Start() && !inside:
			inside = true
			continue
		case id == e.vocab.End() && inside:
			inside = false
			continue
		case id == e.vocab.Pad() && !inside:
			continue
		}
		tok, ok := e.vocab.Token(id)
		if !ok {
			tok = unk
		}
		out = append(out, tok)
	}
	return out
}
