package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/pipeline"
	textpkg "github.com/example/go-polyglot-tts/internal/text"
)

func newEncodeCmd() *cobra.Command {
	var text string
	var lang string
	var out string
	var chunk bool
	var maxChunkChars int

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Convert text to token IDs and print the utterances as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			override, err := parseOverride(lang)
			if err != nil {
				return err
			}
			inputText, err := readInputText(text, os.Stdin)
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			utts, err := encodeChunks(cmd.Context(), p, buildChunks(inputText, chunk, maxChunkChars), override)
			if err != nil {
				return err
			}

			return writeOutput(out, os.Stdout, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if !chunk {
					return enc.Encode(utts[0])
				}
				return enc.Encode(utts)
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode (if empty, read from stdin)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language override (en|zh|ja); empty detects")
	cmd.Flags().StringVar(&out, "out", "-", "Output JSON path ('-' for stdout)")
	cmd.Flags().BoolVar(&chunk, "chunk", false, "Split text into sentence chunks and print a JSON array")
	cmd.Flags().IntVar(&maxChunkChars, "max-chunk-chars", 220, "Maximum characters per chunk when --chunk is enabled")

	return cmd
}

// buildChunks returns the input as one chunk, or its sentence chunks.
func buildChunks(input string, chunk bool, maxChunkChars int) []string {
	if !chunk {
		return []string{input}
	}

	var out []string
	for _, c := range textpkg.ChunkBySentence(input, maxChunkChars) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []string{input}
	}
	return out
}

func encodeChunks(ctx context.Context, p *pipeline.Pipeline, chunks []string, override language.Tag) ([]pipeline.Utterance, error) {
	utts := make([]pipeline.Utterance, 0, len(chunks))
	for i, c := range chunks {
		u, err := p.Prepare(ctx, c, override)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		utts = append(utts, u)
	}
	return utts, nil
}

func parseOverride(raw string) (language.Tag, error) {
	if strings.TrimSpace(raw) == "" {
		return language.Unknown, nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Unknown, fmt.Errorf("invalid --lang: %w", err)
	}
	return tag, nil
}

func readInputText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}

// writeOutput runs write against stdout for "-" and against a created file
// otherwise.
func writeOutput(outPath string, stdout io.Writer, write func(io.Writer) error) error {
	if outPath == "" || outPath == "-" {
		if stdout == nil {
			return fmt.Errorf("stdout writer is nil")
		}
		return write(stdout)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
