package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/example/go-polyglot-tts/internal/language"
)

// Request is one batch item.
type Request struct {
	ID       string       `json:"id,omitempty"`
	Text     string       `json:"text"`
	Language language.Tag `json:"language,omitempty"`
}

// Result pairs a request with its utterance or error. Results keep the
// order of the requests.
type Result struct {
	ID        string
	Utterance Utterance
	Err       error
}

// EncodeBatch prepares every request on at most Options.Concurrency
// goroutines. A failing item does not cancel the others; only ctx does.
func (p *Pipeline) EncodeBatch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			u, err := p.Prepare(ctx, req.Text, req.Language)
			results[i] = Result{ID: req.ID, Utterance: u, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.log.Debug("batch encoded",
		slog.Int("items", len(reqs)),
		slog.Int("failed", failed),
		slog.Int("workers", p.opts.Concurrency),
	)
	return results
}
