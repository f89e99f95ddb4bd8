package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/config"
	"github.com/example/go-polyglot-tts/internal/pipeline"
	"github.com/example/go-polyglot-tts/internal/resources"
	"github.com/example/go-polyglot-tts/internal/server"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "polytts",
		Short:         "Multilingual TTS frontend: text to token IDs, audio resampling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newResampleCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newResourcesCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Language.Default == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// newPipeline loads the configured resources and builds a pipeline.
func newPipeline(cfg config.Config) (*pipeline.Pipeline, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}
	res, err := resources.Load(cfg.Paths.Resources)
	if err != nil {
		return nil, &pipeline.Error{Kind: pipeline.KindResourceLoadFailure, Err: err}
	}
	return pipeline.New(res, opts, pipeline.WithLogger(slog.Default()))
}
