package config

import (
	"fmt"

	"github.com/example/go-polyglot-tts/internal/audio"
	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/pipeline"
)

// NormalizeQuality validates a resampler quality name; empty selects the
// default preset.
func NormalizeQuality(raw string) (audio.Quality, error) {
	q, err := audio.ParseQuality(raw)
	if err != nil {
		return "", fmt.Errorf("invalid audio.quality: %w", err)
	}
	return q, nil
}

// NormalizeEngine validates a resampler engine name; empty selects sinc.
func NormalizeEngine(raw string) (audio.Engine, error) {
	e, err := audio.ParseEngine(raw)
	if err != nil {
		return "", fmt.Errorf("invalid audio.engine: %w", err)
	}
	return e, nil
}

// PipelineOptions threads the language, audio and worker sections into
// pipeline.Options, rejecting values the pipeline cannot use.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	tag, err := language.Parse(c.Language.Default)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid language.default: %w", err)
	}
	if !tag.IsSupported() {
		return pipeline.Options{}, fmt.Errorf("invalid language.default: %q is not supported", c.Language.Default)
	}
	if c.Language.Threshold < 0 || c.Language.Threshold > 1 {
		return pipeline.Options{}, fmt.Errorf("invalid language.threshold: %v out of range [0, 1]", c.Language.Threshold)
	}
	quality, err := NormalizeQuality(c.Audio.Quality)
	if err != nil {
		return pipeline.Options{}, err
	}
	engine, err := NormalizeEngine(c.Audio.Engine)
	if err != nil {
		return pipeline.Options{}, err
	}
	format, err := audio.ParseSampleFormat(c.Audio.Format)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("invalid audio.format: %w", err)
	}
	if c.Audio.TargetRate < 0 {
		return pipeline.Options{}, fmt.Errorf("invalid audio.target_rate: %d", c.Audio.TargetRate)
	}
	if c.Audio.Channels < 0 {
		return pipeline.Options{}, fmt.Errorf("invalid audio.channels: %d", c.Audio.Channels)
	}

	return pipeline.Options{
		DefaultLanguage: tag,
		Threshold:       c.Language.Threshold,
		SilentFallback:  c.Language.SilentFallback,
		Output: pipeline.OutputOptions{
			TargetRate: c.Audio.TargetRate,
			Channels:   c.Audio.Channels,
			Quality:    quality,
			Engine:     engine,
			Format:     format,
		},
		Concurrency: max(c.Worker.Concurrency, 1),
	}, nil
}
