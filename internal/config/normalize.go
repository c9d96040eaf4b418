package config

import (
	"strings"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
)

// normalize case-folds enumerations before defaults are applied.
func normalize(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	naming, err := frontmatter.ParseNamingConvention(cfg.FrontMatter.Naming)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid front_matter.naming").
			Fatal().
			WithContext("valid", frontmatter.NamingConventions()).
			Build()
	}
	cfg.FrontMatter.Naming = string(naming)

	var exts []string
	for _, name := range cfg.Markdown.Extensions {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !markdown.IsKnownExtension(name) {
			return ferrors.ValidationError("unknown markdown extension").
				WithContext("extension", name).
				Build()
		}
		exts = append(exts, name)
	}
	cfg.Markdown.Extensions = exts
	return nil
}
