// Package config loads wizard settings from an optional YAML file and
// WIZARD_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/wizard"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nesting levels: WIZARD_STREAM__MAX_RETRIES sets
// stream.max_retries.
const EnvPrefix = "WIZARD_"

// Config is the merged wizard configuration: defaults, then the YAML file,
// then WIZARD_ environment overrides.
type Config struct {
	Endpoint  string          `koanf:"endpoint"`
	Stream    StreamConfig    `koanf:"stream"`
	DataTypes DataTypesConfig `koanf:"datatypes"`
	Log       LogConfig       `koanf:"log"`
	Trace     TraceConfig     `koanf:"trace"`
}

// StreamConfig holds the stream controller options. ArrayPath and DataType
// enable reconstruction of items from text chunks.
type StreamConfig struct {
	MaxRetries  int           `koanf:"max_retries"`
	RetryDelay  time.Duration `koanf:"retry_delay"`
	Timeout     time.Duration `koanf:"timeout"`
	ArrayPath   string        `koanf:"array_path"`
	DataType    string        `koanf:"data_type"`
	Deduplicate bool          `koanf:"deduplicate"`
}

// DataTypesConfig points at extra data type definitions. Dir is empty when
// only the built-in types are used.
type DataTypesConfig struct {
	Dir     string `koanf:"dir"`
	Pattern string `koanf:"pattern"`
}

// LogConfig selects the slog handler and its destination.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
	Output string `koanf:"output"` // stderr, stdout, or a file path
}

// TraceConfig controls the OpenTelemetry tracer provider.
type TraceConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"` // stdout, noop
}

var defaults = map[string]any{
	"endpoint":           "http://localhost:3000/api/ai/streaming",
	"stream.max_retries": 3,
	"stream.retry_delay": time.Second,
	"stream.timeout":     30 * time.Second,
	"datatypes.pattern":  "**/*.{yaml,yml}",
	"log.level":          "info",
	"log.format":         "text",
	"log.output":         "stderr",
	"trace.enabled":      false,
	"trace.exporter":     "stdout",
}

// Load reads the YAML file at path, when path is not empty, then applies
// environment overrides and defaults for the keys still missing.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	for key, v := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("config: default %s: %w", key, err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Stream.MaxRetries < 0:
		return fmt.Errorf("config: stream.max_retries must not be negative: %w", wizard.ErrValidation)
	case c.Stream.RetryDelay < 0:
		return fmt.Errorf("config: stream.retry_delay must not be negative: %w", wizard.ErrValidation)
	case c.Stream.Timeout < 0:
		return fmt.Errorf("config: stream.timeout must not be negative: %w", wizard.ErrValidation)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q: %w", c.Log.Level, wizard.ErrValidation)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q: %w", c.Log.Format, wizard.ErrValidation)
	}
	switch c.Trace.Exporter {
	case "stdout", "noop", "":
	default:
		return fmt.Errorf("config: unknown trace.exporter %q: %w", c.Trace.Exporter, wizard.ErrValidation)
	}
	return nil
}
