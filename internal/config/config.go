// Package config loads service settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Runtimes that can host ffmpeg/ffprobe.
const (
	RuntimeExec   = "exec"
	RuntimeDocker = "docker"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "transcodeplane.yaml"

// Config holds all configuration values for the service.
type Config struct {
	// HTTP server port
	HTTPPort int

	// Directory receiving transcoded artifacts
	OutputDir string

	// Where ffmpeg runs: "exec" (host binaries) or "docker"
	Runtime string

	FFmpegPath  string
	FFprobePath string

	// Image providing ffmpeg/ffprobe for the docker runtime
	FFmpegImage string

	// Upper bound on jobs transcoding at once; 0 means unbounded
	WorkerConcurrency int

	// Reject unknown resolution labels at submission instead of falling back
	StrictTiers bool

	// Optional Redis URL for terminal job events
	RedisURL string

	// Tracing
	TracingEnabled bool
	OTELEndpoint   string

	LogLevel string
}

// keys maps config-file keys to the environment variables overriding them.
var keys = map[string]string{
	"http_port":          "PORT",
	"output_dir":         "OUTPUT_DIR",
	"runtime":            "RUNTIME",
	"ffmpeg_path":        "FFMPEG_PATH",
	"ffprobe_path":       "FFPROBE_PATH",
	"ffmpeg_image":       "FFMPEG_IMAGE",
	"worker_concurrency": "WORKER_CONCURRENCY",
	"strict_tiers":       "STRICT_TIERS",
	"redis_url":          "REDIS_URL",
	"tracing_enabled":    "TRACING_ENABLED",
	"otel_endpoint":      "OTEL_EXPORTER_OTLP_ENDPOINT",
	"log_level":          "LOG_LEVEL",
}

// Load reads configuration. path may be empty, in which case
// transcodeplane.yaml is used if present. Environment variables always win
// over the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8080)
	v.SetDefault("output_dir", os.TempDir())
	v.SetDefault("runtime", RuntimeExec)
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("ffmpeg_image", "linuxserver/ffmpeg:latest")
	v.SetDefault("worker_concurrency", 0)
	v.SetDefault("strict_tiers", false)
	v.SetDefault("redis_url", "")
	v.SetDefault("tracing_enabled", false)
	v.SetDefault("otel_endpoint", "localhost:4317")
	v.SetDefault("log_level", "info")

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigFile(DefaultConfigFile)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPPort:          v.GetInt("http_port"),
		OutputDir:         v.GetString("output_dir"),
		Runtime:           strings.ToLower(v.GetString("runtime")),
		FFmpegPath:        v.GetString("ffmpeg_path"),
		FFprobePath:       v.GetString("ffprobe_path"),
		FFmpegImage:       v.GetString("ffmpeg_image"),
		WorkerConcurrency: v.GetInt("worker_concurrency"),
		StrictTiers:       v.GetBool("strict_tiers"),
		RedisURL:          v.GetString("redis_url"),
		TracingEnabled:    v.GetBool("tracing_enabled"),
		OTELEndpoint:      v.GetString("otel_endpoint"),
		LogLevel:          v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535 (env: PORT), got %d", c.HTTPPort)
	}
	if c.Runtime != RuntimeExec && c.Runtime != RuntimeDocker {
		return fmt.Errorf("runtime must be %q or %q (env: RUNTIME), got %q", RuntimeExec, RuntimeDocker, c.Runtime)
	}
	if c.WorkerConcurrency < 0 {
		return fmt.Errorf("worker_concurrency must not be negative (env: WORKER_CONCURRENCY), got %d", c.WorkerConcurrency)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required (env: OUTPUT_DIR)")
	}
	if c.TracingEnabled && c.OTELEndpoint == "" {
		return errors.New("otel_endpoint is required when tracing is enabled (env: OTEL_EXPORTER_OTLP_ENDPOINT)")
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
