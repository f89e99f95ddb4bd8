package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/doctor"
)

func newDoctorCmd() *cobra.Command {
	var maxUnknown float64

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run resource bundle and pipeline checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			// Config errors are reported before bundle checks.
			if _, err := cfg.PipelineOptions(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			return runDoctor(doctor.Config{
				ResourcesPath:   cfg.Paths.Resources,
				MaxUnknownRatio: maxUnknown,
			}, os.Stdout, os.Stderr)
		},
	}

	cmd.Flags().Float64Var(&maxUnknown, "max-unknown-ratio", 0.5, "Largest tolerated share of unknown symbols per smoke utterance")

	return cmd
}

func runDoctor(dcfg doctor.Config, stdout, stderr io.Writer) error {
	result := doctor.Run(dcfg, stdout)
	if result.Failed() {
		for _, f := range result.Failures() {
			_, _ = fmt.Fprintf(stderr, "FAIL: %s\n", f)
		}

		return errors.New("doctor checks failed")
	}

	_, _ = fmt.Fprintln(stdout, "doctor checks passed")

	return nil
}
