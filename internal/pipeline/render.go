package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/language"
)

// InferRequest is one forward pass of the acoustic model.
type InferRequest struct {
	IDs    []int64
	Lang   language.Tag
	Params map[string]string
}

// Engine runs the acoustic model. Implementations live outside this
// package; the pipeline only sees encoded IDs in and a waveform out.
type Engine interface {
	Infer(ctx context.Context, req InferRequest) (audio.Buffer, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, req InferRequest) (audio.Buffer, error)

func (f EngineFunc) Infer(ctx context.Context, req InferRequest) (audio.Buffer, error) {
	return f(ctx, req)
}

// Writer consumes the resampled waveform.
type Writer interface {
	Write(ctx context.Context, buf audio.Buffer) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, buf audio.Buffer) error

func (f WriterFunc) Write(ctx context.Context, buf audio.Buffer) error { return f(ctx, buf) }

// WAVFileWriter writes each waveform to Path as a 16-bit PCM WAV file,
// replacing any previous content.
type WAVFileWriter struct {
	Path string
}

func (w WAVFileWriter) Write(_ context.Context, buf audio.Buffer) error {
	data, err := audio.EncodeWAV(buf)
	if err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := os.WriteFile(w.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.Path, err)
	}
	return nil
}

// validate checks the fields that do not depend on the engine's output.
// Zero TargetRate and Channels mean "keep".
func (o OutputOptions) validate() error {
	if o.TargetRate < 0 {
		return fmt.Errorf("%w: target rate %d", audio.ErrInvalidSpec, o.TargetRate)
	}
	if o.Channels < 0 {
		return fmt.Errorf("%w: channels %d", audio.ErrInvalidSpec, o.Channels)
	}
	check := audio.ResampleSpec{
		SourceRate: 1,
		TargetRate: 1,
		Channels:   1,
		Quality:    o.Quality,
		Engine:     o.Engine,
		Format:     o.Format,
	}
	return check.Validate()
}

// Spec builds the resample spec for a waveform at sourceRate with the given
// channel count.
func (o OutputOptions) Spec(sourceRate, channels int) audio.ResampleSpec {
	target := o.TargetRate
	if target == 0 {
		target = sourceRate
	}
	if o.Channels > 0 {
		channels = o.Channels
	}
	return audio.ResampleSpec{
		SourceRate: float64(sourceRate),
		TargetRate: float64(target),
		Channels:   channels,
		Quality:    o.Quality,
		Engine:     o.Engine,
		Format:     o.Format,
	}
}

// Resample converts an engine waveform to the configured output.
func (p *Pipeline) Resample(ctx context.Context, buf audio.Buffer) (audio.Buffer, error) {
	return Resample(ctx, buf, p.opts.Output)
}

// Resample converts buf to out: channel remix first, then rate, then
// sample format.
func Resample(ctx context.Context, buf audio.Buffer, out OutputOptions) (audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return audio.Buffer{}, stageError(KindCanceled, StateSynthesized, err)
	}
	if err := out.validate(); err != nil {
		return audio.Buffer{}, stageError(KindInvalidResampleSpec, StateSynthesized, err)
	}
	spec := out.Spec(buf.SampleRate, buf.Channels)
	if err := spec.Validate(); err != nil {
		return audio.Buffer{}, stageError(KindInvalidResampleSpec, StateSynthesized, err)
	}
	if buf.Channels != spec.Channels {
		remixed, err := audio.Remix(buf, spec.Channels)
		if err != nil {
			return audio.Buffer{}, stageError(KindInvalidResampleSpec, StateSynthesized, err)
		}
		buf = remixed
	}
	res, err := audio.Resample(buf, spec)
	if err != nil {
		kind := KindInvalidResampleSpec
		if !errors.Is(err, audio.ErrInvalidSpec) && !errors.Is(err, audio.ErrInvalidBuffer) {
			kind = KindInference
		}
		return audio.Buffer{}, stageError(kind, StateSynthesized, err)
	}
	return res, nil
}

// Render takes an Encoded utterance through the engine, the resampler and
// the writer. The output spec is checked before the engine is called so an
// unusable configuration never costs an inference.
func (p *Pipeline) Render(ctx context.Context, u Utterance, eng Engine, w Writer, params map[string]string) (Utterance, error) {
	if u.State != StateEncoded {
		return u, stageError(KindInference, u.State, fmt.Errorf("utterance is %s, want %s", u.State, StateEncoded))
	}
	if err := p.opts.Output.validate(); err != nil {
		return u, stageError(KindInvalidResampleSpec, u.State, err)
	}
	if err := ctx.Err(); err != nil {
		return u, stageError(KindCanceled, u.State, err)
	}

	buf, err := eng.Infer(ctx, InferRequest{IDs: u.TokenIDs, Lang: u.Language, Params: params})
	if err != nil {
		return u, stageError(KindInference, u.State, err)
	}
	if err := buf.Validate(); err != nil {
		return u, stageError(KindInference, u.State, err)
	}
	u.State = StateSynthesized

	out, err := p.Resample(ctx, buf)
	if err != nil {
		return u, err
	}
	u.State = StateResampled

	if err := ctx.Err(); err != nil {
		return u, stageError(KindCanceled, u.State, err)
	}
	if err := w.Write(ctx, out); err != nil {
		return u, stageError(KindWrite, u.State, err)
	}
	u.State = StateWritten

	p.log.Debug("utterance rendered",
		slog.String("lang", u.Language.String()),
		slog.Int("source_rate", buf.SampleRate),
		slog.Int("rate", out.SampleRate),
		slog.Int("frames", out.Frames()),
	)
	return u, nil
}
