package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POLYTTS_LOG_LEVEL.
const EnvPrefix = "POLYTTS"

type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Language LanguageConfig `mapstructure:"language"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Server   ServerConfig   `mapstructure:"server"`
	LogLevel string         `mapstructure:"log_level"`
}

type PathsConfig struct {
	// Resources is a bundle directory or zip archive; empty selects the
	// built-in tables.
	Resources string `mapstructure:"resources"`
}

type LanguageConfig struct {
	Default        string  `mapstructure:"default"`
	Threshold      float64 `mapstructure:"threshold"`
	SilentFallback bool    `mapstructure:"silent_fallback"`
}

type AudioConfig struct {
	// TargetRate and Channels of 0 keep the engine's.
	TargetRate int    `mapstructure:"target_rate"`
	Channels   int    `mapstructure:"channels"`
	Quality    string `mapstructure:"quality"`
	Engine     string `mapstructure:"engine"`
	Format     string `mapstructure:"format"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Resources: "",
		},
		Language: LanguageConfig{
			Default:        "en",
			Threshold:      0.5,
			SilentFallback: false,
		},
		Audio: AudioConfig{
			TargetRate: 0,
			Channels:   0,
			Quality:    "high",
			Engine:     "sinc",
			Format:     "",
		},
		Worker: WorkerConfig{
			Concurrency: 4,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    4096,
			RequestTimeout:  60,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

// flagKeys maps each registered flag to its config key.
var flagKeys = map[string]string{
	"resources":                "paths.resources",
	"language":                 "language.default",
	"language-threshold":       "language.threshold",
	"language-silent-fallback": "language.silent_fallback",
	"target-rate":              "audio.target_rate",
	"channels":                 "audio.channels",
	"quality":                  "audio.quality",
	"resample-engine":          "audio.engine",
	"format":                   "audio.format",
	"concurrency":              "worker.concurrency",
	"server-listen-addr":       "server.listen_addr",
	"workers":                  "server.workers",
	"max-text-bytes":           "server.max_text_bytes",
	"request-timeout":          "server.request_timeout",
	"shutdown-timeout":         "server.shutdown_timeout",
	"log-level":                "log_level",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("resources", defaults.Paths.Resources, "Resource bundle directory or zip archive (empty: built-in tables)")
	fs.String("language", defaults.Language.Default, "Fallback language when detection is inconclusive (en|zh|ja)")
	fs.Float64("language-threshold", defaults.Language.Threshold, "Minimum detector confidence in [0, 1]")
	fs.Bool("language-silent-fallback", defaults.Language.SilentFallback, "Do not warn when a low-confidence detection falls back to the default")
	fs.Int("target-rate", defaults.Audio.TargetRate, "Output sample rate in Hz (0: keep engine rate)")
	fs.Int("channels", defaults.Audio.Channels, "Output channel count (0: keep engine layout)")
	fs.String("quality", defaults.Audio.Quality, "Resampler quality (low|medium|high|best)")
	fs.String("resample-engine", defaults.Audio.Engine, "Resampler implementation (sinc|soxr)")
	fs.String("format", defaults.Audio.Format, "Output sample format (f32|s16; empty keeps input)")
	fs.Int("concurrency", defaults.Worker.Concurrency, "Batch worker count")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent HTTP encode requests")
	fs.Int("max-text-bytes", defaults.Server.MaxTextBytes, "Max text size accepted by POST /v1/encode")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("polytts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.resources", c.Paths.Resources)
	v.SetDefault("language.default", c.Language.Default)
	v.SetDefault("language.threshold", c.Language.Threshold)
	v.SetDefault("language.silent_fallback", c.Language.SilentFallback)
	v.SetDefault("audio.target_rate", c.Audio.TargetRate)
	v.SetDefault("audio.channels", c.Audio.Channels)
	v.SetDefault("audio.quality", c.Audio.Quality)
	v.SetDefault("audio.engine", c.Audio.Engine)
	v.SetDefault("audio.format", c.Audio.Format)
	v.SetDefault("worker.concurrency", c.Worker.Concurrency)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

// bindFlags binds each registered flag to its nested key, so a flag the
// user set beats env and file values while an untouched flag does not
// shadow them. Flags the command did not register are skipped.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
