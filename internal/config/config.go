// SPDX-License-Identifier: EPL-2.0

// Package config loads the pcmpipe command configuration from environment
// variables prefixed with PCMPIPE_.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/ik5/pcmpipe/audio"
)

// Prefix is prepended to every variable name.
const Prefix = "PCMPIPE_"

// Config holds all configuration for the command.
type Config struct {
	// Output conversion; zero values keep the source's parameters.
	OutputRate   int                 `env:"OUTPUT_RATE" validate:"gte=0"`
	OutputLayout audio.ChannelLayout `env:"OUTPUT_LAYOUT"`
	OutputFormat audio.SampleFormat  `env:"OUTPUT_FORMAT"`

	// Processing settings
	ChunkBytes  int `env:"CHUNK_BYTES, default=4096" validate:"gt=0"`
	Concurrency int `env:"CONCURRENCY, default=4" validate:"gt=0,lte=64"`

	// Local output directory
	OutputDir string `env:"OUTPUT_DIR, default=."`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET"`
	S3Region           string `env:"S3_REGION" validate:"required_with=S3Bucket"`
	S3Endpoint         string `env:"S3_ENDPOINT" validate:"omitempty,url"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" validate:"required_with=AWSAccessKeyID"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" validate:"oneof=text json"`
	LogLevel  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn warning error"`
}

var validate = validator.New()

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads the configuration through l, adding Prefix to every name.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(Prefix, l),
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Flags applied after Load should be
// followed by another call.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Output returns the requested output format. Zero fields mean "same as
// the input".
func (c *Config) Output() audio.StreamFormat {
	return audio.StreamFormat{
		SampleRate: c.OutputRate,
		Layout:     c.OutputLayout,
		Format:     c.OutputFormat,
	}
}

// NewLogger creates a structured logger writing to w. When LogFormat is
// "json" it emits JSON, otherwise human-readable text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// String returns a string representation of the config with credentials
// left out.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Output: %s, ChunkBytes: %d, Concurrency: %d, OutputDir: %s, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.Output(),
		c.ChunkBytes,
		c.Concurrency,
		c.OutputDir,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
