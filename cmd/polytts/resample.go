package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/pipeline"
)

type resampleDSPOptions struct {
	Normalize bool
	DCBlock   bool
	FadeInMS  float64
	FadeOutMS float64
}

func (o resampleDSPOptions) enabled() bool {
	return o.Normalize || o.DCBlock || o.FadeInMS > 0 || o.FadeOutMS > 0
}

// hooks returns the post-processing chain for a waveform at sampleRate with
// the given channel count.
func (o resampleDSPOptions) hooks(sampleRate, channels int) []audio.Hook {
	var hooks []audio.Hook
	if o.Normalize {
		hooks = append(hooks, audio.PeakNormalize)
	}
	if o.DCBlock {
		hooks = append(hooks, func(s []float32) []float32 { return audio.DCBlock(s, sampleRate, channels) })
	}
	if o.FadeInMS > 0 {
		hooks = append(hooks, func(s []float32) []float32 { return audio.FadeIn(s, sampleRate, channels, o.FadeInMS) })
	}
	if o.FadeOutMS > 0 {
		hooks = append(hooks, func(s []float32) []float32 { return audio.FadeOut(s, sampleRate, channels, o.FadeOutMS) })
	}
	return hooks
}

func newResampleCmd() *cobra.Command {
	var in string
	var out string
	var stream bool
	var chunkFrames int
	var dsp resampleDSPOptions

	cmd := &cobra.Command{
		Use:   "resample",
		Short: "Convert a 16-bit PCM WAV to the configured rate and layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.PipelineOptions()
			if err != nil {
				return err
			}

			data, err := readInputBytes(in, os.Stdin)
			if err != nil {
				return err
			}
			buf, err := audio.DecodeWAV(data)
			if err != nil {
				return fmt.Errorf("decode input WAV: %w", err)
			}
			buf = applyDSP(buf, dsp)

			return writeOutput(out, os.Stdout, func(w io.Writer) error {
				if stream {
					return resampleStreaming(cmd.Context(), w, buf, opts.Output, chunkFrames)
				}
				return resampleWhole(cmd.Context(), w, buf, opts.Output)
			})
		},
	}

	cmd.Flags().StringVar(&in, "in", "-", "Input WAV path ('-' for stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "Output WAV path ('-' for stdout)")
	cmd.Flags().BoolVar(&stream, "stream", false, "Resample in chunks and write a streaming WAV header")
	cmd.Flags().IntVar(&chunkFrames, "chunk-frames", 4096, "Input frames per chunk with --stream")
	cmd.Flags().BoolVar(&dsp.Normalize, "normalize", false, "Peak-normalize input audio")
	cmd.Flags().BoolVar(&dsp.DCBlock, "dc-block", false, "Apply DC-block high-pass filter")
	cmd.Flags().Float64Var(&dsp.FadeInMS, "fade-in-ms", 0, "Apply linear fade-in duration in milliseconds")
	cmd.Flags().Float64Var(&dsp.FadeOutMS, "fade-out-ms", 0, "Apply linear fade-out duration in milliseconds")

	return cmd
}

func applyDSP(buf audio.Buffer, opts resampleDSPOptions) audio.Buffer {
	if !opts.enabled() {
		return buf
	}
	samples := audio.ApplyHooks(buf.Float32Samples(), opts.hooks(buf.SampleRate, buf.Channels)...)
	return audio.NewFloat32(samples, buf.SampleRate, buf.Channels)
}

func resampleWhole(ctx context.Context, w io.Writer, buf audio.Buffer, out pipeline.OutputOptions) error {
	res, err := pipeline.Resample(ctx, buf, out)
	if err != nil {
		return err
	}
	wavData, err := audio.EncodeWAVPCM16(res)
	if err != nil {
		return fmt.Errorf("encode output WAV: %w", err)
	}
	_, err = w.Write(wavData)
	return err
}

// resampleStreaming feeds buf through one resampler state in chunks of
// chunkFrames input frames, writing each converted chunk as it is produced.
func resampleStreaming(ctx context.Context, w io.Writer, buf audio.Buffer, out pipeline.OutputOptions, chunkFrames int) error {
	if chunkFrames < 1 {
		return fmt.Errorf("--chunk-frames must be positive, got %d", chunkFrames)
	}
	spec := out.Spec(buf.SampleRate, buf.Channels)
	st, err := audio.NewState(spec)
	if err != nil {
		return &pipeline.Error{Kind: pipeline.KindInvalidResampleSpec, Stage: pipeline.StateSynthesized, Err: err}
	}
	if buf.Channels != spec.Channels {
		buf, err = audio.Remix(buf, spec.Channels)
		if err != nil {
			return &pipeline.Error{Kind: pipeline.KindInvalidResampleSpec, Stage: pipeline.StateSynthesized, Err: err}
		}
	}

	if _, err := audio.WriteWAVHeaderStreaming(w, int(spec.TargetRate), spec.Channels); err != nil {
		return fmt.Errorf("write WAV header: %w", err)
	}

	samples := buf.Float32Samples()
	step := chunkFrames * spec.Channels
	chunks := 0
	for start := 0; start < len(samples); start += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+step, len(samples))
		res, err := st.Process(audio.NewFloat32(samples[start:end], buf.SampleRate, spec.Channels))
		if err != nil {
			return err
		}
		if _, err := audio.WriteBuffer(w, res); err != nil {
			return fmt.Errorf("write chunk %d: %w", chunks+1, err)
		}
		chunks++
	}

	tail, err := st.Flush()
	if err != nil {
		return err
	}
	if _, err := audio.WriteBuffer(w, tail); err != nil {
		return fmt.Errorf("write tail: %w", err)
	}

	slog.Debug("stream resampled",
		slog.Int("chunks", chunks),
		slog.Int64("input_frames", st.InputFrames()),
		slog.Float64("target_rate", spec.TargetRate),
	)
	return nil
}

func readInputBytes(path string, stdin io.Reader) ([]byte, error) {
	r, closeIn, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
