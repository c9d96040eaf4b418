package config

import (
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
)

// Validate checks a normalized, defaulted configuration.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Content.Path) == "" {
		return invalid("content.path", "content path cannot be empty")
	}
	if filepath.IsAbs(cfg.Content.Path) {
		return invalid("content.path", "content path must be relative to content.base_dir")
	}
	if _, err := filepath.Match(cfg.Content.FilePattern, ""); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid content.file_pattern").
			Fatal().
			WithContext("field", "content.file_pattern").
			Build()
	}
	if cfg.Content.Workers < 0 {
		return invalid("content.workers", "workers cannot be negative")
	}
	if strings.TrimSpace(cfg.Output.Directory) == "" {
		return invalid("output.directory", "output directory cannot be empty")
	}
	for _, p := range cfg.Output.IgnoredPaths {
		if filepath.IsAbs(p) || escapes(p) {
			return ferrors.ValidationError("ignored path must stay inside the output directory").
				WithContext("field", "output.ignored_paths").
				WithContext("path", p).
				Build()
		}
	}
	d, err := time.ParseDuration(cfg.Watch.Debounce)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid watch.debounce").
			Fatal().
			WithContext("field", "watch.debounce").
			Build()
	}
	if d <= 0 {
		return invalid("watch.debounce", "debounce must be positive")
	}
	return nil
}

func invalid(field, msg string) error {
	return ferrors.ValidationError(msg).WithContext("field", field).Build()
}

func escapes(p string) bool {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	return clean == ".." || strings.HasPrefix(clean, "../")
}
