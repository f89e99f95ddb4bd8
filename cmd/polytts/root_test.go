package main

import (
	"path/filepath"
	"testing"

	"github.com/example/go-polyglot-tts/internal/config"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"encode", "batch", "resample", "bench", "resources", "serve", "health", "doctor"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentConfigFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"config", "resources", "language", "target-rate", "log-level"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s persistent flag to be registered", name)
		}
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		setupLogger(level)
	}
}

func TestSetupLogger_InvalidLevelFallsBackToInfo(_ *testing.T) {
	// Should not panic on invalid level.
	setupLogger("not-a-level")
}

func TestRequireConfig_FailsWhenNotInitialized(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.Config{}

	if _, err := requireConfig(); err == nil {
		t.Fatal("expected error when config is not loaded")
	}
}

func TestRequireConfig_SucceedsWhenLoaded(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.DefaultConfig()

	got, err := requireConfig()
	if err != nil {
		t.Fatalf("requireConfig returned unexpected error: %v", err)
	}
	if got.Language.Default != "en" {
		t.Errorf("unexpected default language: %q", got.Language.Default)
	}
}

func TestNewPipeline_MissingResourcesFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.Resources = filepath.Join(t.TempDir(), "absent")

	if _, err := newPipeline(cfg); err == nil {
		t.Fatal("expected error for a missing resource bundle")
	}
}

func TestNewPipeline_InvalidConfigFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Quality = "ultra"

	if _, err := newPipeline(cfg); err == nil {
		t.Fatal("expected error for an unknown quality")
	}
}

// runCLI executes the root command with args from a fresh working directory
// so no stray config file is picked up.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()

	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}
