package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/resources"
)

func newResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Resource bundle acquisition commands",
	}

	cmd.AddCommand(newResourcesFetchCmd())
	return cmd
}

func newResourcesFetchCmd() *cobra.Command {
	var url string
	var sha string
	var outPath string
	var token string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a resource bundle archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = os.Getenv("POLYTTS_TOKEN")
			}

			sum, err := resources.Fetch(cmd.Context(), resources.FetchOptions{
				URL:     url,
				SHA256:  sha,
				OutPath: outPath,
				Token:   token,
				Stdout:  os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("resources fetch failed: %w", err)
			}

			// The archive must load before it is reported usable.
			res, err := resources.Load(outPath)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(os.Stdout, "%s %s (%s %s)\n", outPath, sum, res.Name, res.Version)
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Bundle archive URL")
	cmd.Flags().StringVar(&sha, "sha256", "", "Expected archive sha256 (hex)")
	cmd.Flags().StringVar(&outPath, "out", "resources.zip", "Destination path")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (falls back to POLYTTS_TOKEN env var)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
