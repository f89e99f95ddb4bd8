// Package bench times the frontend and resampler for the polytts bench
// command.
package bench

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and audio metadata for a single run.
type RunResult struct {
	Index     int
	Cold      bool // true for the first run
	Encode    time.Duration
	Resample  time.Duration
	Duration  time.Duration // Encode + Resample + WAV encoding
	AudioDur  time.Duration
	RTF       float64
	Tokens    int
	OutFrames int
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		mn = min(mn, d)
		mx = max(mx, d)
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// Durations returns each run's total duration.
func Durations(runs []RunResult) []time.Duration {
	out := make([]time.Duration, len(runs))
	for i, r := range runs {
		out[i] = r.Duration
	}
	return out
}

// MeanRTF averages RTF over runs; 0 for no runs.
func MeanRTF(runs []RunResult) float64 {
	if len(runs) == 0 {
		return 0
	}
	var total float64
	for _, r := range runs {
		total += r.RTF
	}
	return total / float64(len(runs))
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Options configure Run.
type Options struct {
	Text     string
	Language language.Tag
	// Audio is resampled on every run to the pipeline's output options.
	Audio audio.Buffer
	Runs  int
}

// Run encodes Text and resamples Audio Runs times on p.
func Run(ctx context.Context, p *pipeline.Pipeline, opts Options) ([]RunResult, error) {
	if opts.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", opts.Runs)
	}
	if err := opts.Audio.Validate(); err != nil {
		return nil, err
	}

	results := make([]RunResult, 0, opts.Runs)
	for i := range opts.Runs {
		start := time.Now()
		u, err := p.Prepare(ctx, opts.Text, opts.Language)
		if err != nil {
			return nil, fmt.Errorf("run %d encode: %w", i+1, err)
		}
		encoded := time.Now()

		out, err := p.Resample(ctx, opts.Audio)
		if err != nil {
			return nil, fmt.Errorf("run %d resample: %w", i+1, err)
		}
		resampled := time.Now()

		wavBytes, err := audio.EncodeWAVPCM16(out)
		if err != nil {
			return nil, fmt.Errorf("run %d encode WAV: %w", i+1, err)
		}
		dur := time.Since(start)

		audioDur, err := WAVDuration(wavBytes)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}

		results = append(results, RunResult{
			Index:     i,
			Cold:      i == 0,
			Encode:    encoded.Sub(start),
			Resample:  resampled.Sub(encoded),
			Duration:  dur,
			AudioDur:  audioDur,
			RTF:       CalcRTF(resampled.Sub(encoded), audioDur),
			Tokens:    len(u.TokenIDs),
			OutFrames: out.Frames(),
		})
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// RTF helpers
// ---------------------------------------------------------------------------

// CalcRTF returns processing_duration / audio_duration, or 0 for silence.
func CalcRTF(procDur, audioDur time.Duration) float64 {
	if audioDur <= 0 {
		return 0
	}
	return float64(procDur) / float64(audioDur)
}

// WAVDuration returns the playback duration of a PCM WAV from its header.
func WAVDuration(wav []byte) (time.Duration, error) {
	// Minimal RIFF/WAV header is 44 bytes.
	if len(wav) < 44 {
		return 0, fmt.Errorf("wav too short (%d bytes)", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	// "fmt " is not always at offset 12.
	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		if chunkID == "fmt " {
			if pos+8+16 > len(wav) {
				return 0, fmt.Errorf("fmt chunk too short")
			}
			sampleRate := int64(binary.LittleEndian.Uint32(wav[pos+8+4 : pos+8+8]))
			blockAlign := int64(binary.LittleEndian.Uint16(wav[pos+8+12 : pos+8+14]))
			if sampleRate == 0 || blockAlign == 0 {
				return 0, fmt.Errorf("invalid fmt chunk: sampleRate=%d blockAlign=%d", sampleRate, blockAlign)
			}

			// Find data chunk size.
			dataSize, err := findDataChunkSize(wav)
			if err != nil {
				return 0, err
			}

			numSamples := dataSize / blockAlign
			nanos := numSamples * int64(time.Second) / sampleRate
			return time.Duration(nanos), nil
		}
		pos += 8 + chunkSize
		if chunkSize%2 != 0 {
			pos++ // RIFF pad byte
		}
	}
	return 0, fmt.Errorf("fmt chunk not found")
}

func findDataChunkSize(wav []byte) (int64, error) {
	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int64(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		if chunkID == "data" {
			return chunkSize, nil
		}
		pos += 8 + int(chunkSize)
		if chunkSize%2 != 0 {
			pos++
		}
	}
	return 0, fmt.Errorf("data chunk not found")
}

// ---------------------------------------------------------------------------
// RTF threshold gate
// ---------------------------------------------------------------------------

// CheckRTFThreshold returns an error if meanRTF > threshold.
// A threshold of 0 disables the gate.
func CheckRTFThreshold(meanRTF, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if meanRTF > threshold {
		return fmt.Errorf("mean RTF %.3f exceeds threshold %.3f", meanRTF, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// FormatTable writes a human-readable table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %12s  %10s  %12s  %8s  %6s\n",
		"Run", "Cold", "Encode(ms)", "Resample(ms)", "Total(ms)", "Audio(ms)", "RTF", "Tokens")
	rule := strings.Repeat("-", 84)
	fmt.Fprintln(sb, rule)

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.2f  %12.2f  %10.2f  %12.1f  %8.4f  %6d\n",
			r.Index+1, cold, ms(r.Encode), ms(r.Resample), ms(r.Duration), ms(r.AudioDur), r.RTF, r.Tokens)
	}

	fmt.Fprintln(sb, rule)
	for _, row := range []struct {
		label string
		d     time.Duration
	}{{"min", stats.Min}, {"mean", stats.Mean}, {"max", stats.Max}} {
		fmt.Fprintf(sb, "%-5s  %-5s  %10s  %12s  %10.2f  (%s)\n", "", "", "", "", ms(row.d), row.label)
	}

	fmt.Fprint(w, sb.String())
}

type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	EncodeMS   float64 `json:"encode_ms"`
	ResampleMS float64 `json:"resample_ms"`
	DurationMS float64 `json:"duration_ms"`
	AudioMS    float64 `json:"audio_ms"`
	RTF        float64 `json:"rtf"`
	Tokens     int     `json:"tokens"`
	OutFrames  int     `json:"out_frames"`
}

type jsonStats struct {
	MinMS   float64 `json:"min_ms"`
	MeanMS  float64 `json:"mean_ms"`
	MaxMS   float64 `json:"max_ms"`
	MeanRTF float64 `json:"mean_rtf"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) error {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:   ms(stats.Min),
			MeanMS:  ms(stats.Mean),
			MaxMS:   ms(stats.Max),
			MeanRTF: MeanRTF(runs),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			EncodeMS:   ms(r.Encode),
			ResampleMS: ms(r.Resample),
			DurationMS: ms(r.Duration),
			AudioMS:    ms(r.AudioDur),
			RTF:        r.RTF,
			Tokens:     r.Tokens,
			OutFrames:  r.OutFrames,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jr)
}
