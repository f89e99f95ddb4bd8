package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/bench"
)

// benchToneRate is the source rate of the generated clip used when no
// --in WAV is given.
const benchToneRate = 16000

func newBenchCmd() *cobra.Command {
	var (
		text         string
		lang         string
		in           string
		seconds      float64
		runs         int
		format       string
		rtfThreshold float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode latency and resampler realtime factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("--text is required for bench")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}
			override, err := parseOverride(lang)
			if err != nil {
				return err
			}

			clip, err := benchClip(in, seconds)
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			results, err := bench.Run(cmd.Context(), p, bench.Options{
				Text:     text,
				Language: override,
				Audio:    clip,
				Runs:     runs,
			})
			if err != nil {
				return err
			}

			if err := writeBenchReport(os.Stdout, format, results); err != nil {
				return err
			}
			return bench.CheckRTFThreshold(bench.MeanRTF(results), rtfThreshold)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode for each run (required)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language override (en|zh|ja)")
	cmd.Flags().StringVar(&in, "in", "", "WAV to resample each run (default: generated tone)")
	cmd.Flags().Float64Var(&seconds, "seconds", 1, "Length of the generated tone when --in is empty")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&rtfThreshold, "rtf-threshold", 0, "Exit non-zero if mean resample RTF exceeds this value (0 = disabled)")

	return cmd
}

func writeBenchReport(w io.Writer, format string, results []bench.RunResult) error {
	stats := bench.ComputeStats(bench.Durations(results))
	if format == "json" {
		return bench.FormatJSON(results, stats, w)
	}
	bench.FormatTable(results, stats, w)
	return nil
}

// benchClip loads the WAV at path, or generates a mono 440 Hz tone.
func benchClip(path string, seconds float64) (audio.Buffer, error) {
	if path != "" {
		data, err := readInputBytes(path, os.Stdin)
		if err != nil {
			return audio.Buffer{}, err
		}
		return audio.DecodeWAV(data)
	}
	if seconds <= 0 {
		return audio.Buffer{}, fmt.Errorf("--seconds must be positive")
	}

	samples := make([]float32, int(seconds*benchToneRate))
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/benchToneRate))
	}
	return audio.NewFloat32(samples, benchToneRate, 1), nil
}
