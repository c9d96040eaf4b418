// Package config loads the postbuilder YAML configuration.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
)

// CurrentVersion is the only configuration version Load accepts.
const CurrentVersion = "1.0"

// Config is the complete configuration file.
type Config struct {
	Version     string            `yaml:"version"`
	Content     ContentConfig     `yaml:"content"`
	FrontMatter FrontMatterConfig `yaml:"front_matter"`
	Markdown    MarkdownConfig    `yaml:"markdown"`
	Tags        TagsConfig        `yaml:"tags"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Watch       WatchConfig       `yaml:"watch"`
}

// ContentConfig locates the markdown sources.
type ContentConfig struct {
	BaseDir     string `yaml:"base_dir"`     // Directory ContentPath is relative to
	Path        string `yaml:"path"`         // Content root, also the media URL prefix
	FilePattern string `yaml:"file_pattern"` // filepath.Match pattern for post files
	PageURL     string `yaml:"page_url"`     // Route prefix for post pages
	Workers     int    `yaml:"workers"`      // Parallel parsers; 0 uses GOMAXPROCS
}

// FrontMatterConfig controls metadata decoding.
type FrontMatterConfig struct {
	Naming      string `yaml:"naming"`       // none|camel|pascal|snake|kebab|lower
	KnownFields bool   `yaml:"known_fields"` // Reject unknown keys as invalid metadata
}

// MarkdownConfig assembles the goldmark engine.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// TagsConfig controls tag pages.
type TagsConfig struct {
	Enabled bool   `yaml:"enabled"` // Defaults to true when omitted
	PageURL string `yaml:"page_url"`

	enabledSpecified bool
}

// OutputConfig controls where copy jobs and the manifest are written.
type OutputConfig struct {
	Directory    string   `yaml:"directory"`
	Manifest     string   `yaml:"manifest"`      // Relative to Directory unless absolute
	StaticDir    string   `yaml:"static_dir"`    // Optional folder mirrored into Directory
	IgnoredPaths []string `yaml:"ignored_paths"` // Output-relative paths never copied
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	applyDefaults(cfg)
	return cfg
}

// Load reads, normalizes, defaults and validates the configuration at path.
// Environment variables referenced as ${VAR} are expanded; a .env or
// .env.local next to the file is loaded first.
func Load(path string) (*Config, error) {
	if _, err := loadEnvFile(filepath.Dir(path)); err != nil {
		slog.Warn("Cannot load .env file", slog.String("error", err.Error()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
				Fatal().
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot read configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "cannot parse configuration").Build()
	}

	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Version != CurrentVersion {
		return nil, ferrors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", CurrentVersion).
			Build()
	}

	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
