package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/pipeline"
)

// batchLine is one JSON line of batch output.
type batchLine struct {
	ID        string              `json:"id"`
	Utterance *pipeline.Utterance `json:"utterance,omitempty"`
	Error     string              `json:"error,omitempty"`
	Kind      pipeline.Kind       `json:"kind,omitempty"`
}

func newBatchCmd() *cobra.Command {
	var in string
	var out string
	var lang string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Encode one request per input line and print JSON lines",
		Long: "Each input line is either plain text or a JSON object " +
			`{"id":"...","text":"...","language":"..."}. Blank lines are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			override, err := parseOverride(lang)
			if err != nil {
				return err
			}

			r, closeIn, err := openInput(in, os.Stdin)
			if err != nil {
				return err
			}
			defer closeIn()

			reqs, err := readBatchRequests(r, override)
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			results := p.EncodeBatch(cmd.Context(), reqs)

			var failed int
			err = writeOutput(out, os.Stdout, func(w io.Writer) error {
				var ferr error
				failed, ferr = writeBatchResults(w, results)
				return ferr
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d batch items failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "-", "Input lines file ('-' for stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "Output JSON lines path ('-' for stdout)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language override for lines that do not set one")

	return cmd
}

func readBatchRequests(r io.Reader, override language.Tag) ([]pipeline.Request, error) {
	var reqs []pipeline.Request

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		req := pipeline.Request{ID: strconv.Itoa(lineNo), Text: line}
		if strings.HasPrefix(line, "{") {
			var raw struct {
				ID       string `json:"id"`
				Text     string `json:"text"`
				Language string `json:"language"`
			}
			if err := json.Unmarshal([]byte(line), &raw); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			tag, err := language.Parse(raw.Language)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			req.Text = raw.Text
			req.Language = tag
			if raw.ID != "" {
				req.ID = raw.ID
			}
		}
		if req.Language == language.Unknown {
			req.Language = override
		}
		reqs = append(reqs, req)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read batch input: %w", err)
	}
	return reqs, nil
}

// writeBatchResults writes one JSON line per result and returns the number
// of failed items.
func writeBatchResults(w io.Writer, results []pipeline.Result) (int, error) {
	enc := json.NewEncoder(w)
	failed := 0
	for _, res := range results {
		line := batchLine{ID: res.ID}
		if res.Err != nil {
			failed++
			line.Error = res.Err.Error()
			line.Kind = pipeline.KindOf(res.Err)
		} else {
			line.Utterance = &res.Utterance
		}
		if err := enc.Encode(line); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
