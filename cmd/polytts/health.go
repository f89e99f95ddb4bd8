package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/go-polyglot-tts/internal/language"
	"github.com/example/go-polyglot-tts/internal/server"
)

func newHealthCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
		require []string
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that a running polytts server is up and serves the expected languages",
		Long: `Query /health and /languages on a running server and print its version
and language list. The address defaults to server.listen_addr from the
configuration and may be host:port or a base URL.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.ListenAddr
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runHealth(ctx, addr, require, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address (host:port or URL); defaults to server.listen_addr")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Give up after this long")
	cmd.Flags().StringSliceVar(&require, "require-language", nil, "Fail unless the server lists these language tags")

	return cmd
}

func runHealth(ctx context.Context, addr string, require []string, w io.Writer) error {
	h, err := server.CheckHealth(ctx, addr)
	if err != nil {
		return fmt.Errorf("health %s: %w", addr, err)
	}

	served := make(map[language.Tag]bool, len(h.Languages))
	names := make([]string, len(h.Languages))
	for i, tag := range h.Languages {
		served[tag] = true
		names[i] = tag.String()
	}
	for _, raw := range require {
		tag, err := language.Parse(raw)
		if err != nil {
			return err
		}
		if !served[tag] {
			return fmt.Errorf("health %s: language %q not served (have %s)", addr, raw, strings.Join(names, ","))
		}
	}

	_, err = fmt.Fprintf(w, "ok version=%s languages=%s default=%s\n", h.Version, strings.Join(names, ","), h.Default)
	return err
}
