package config

import (
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/postbuilder/internal/posts"
)

const (
	defaultOutputDir = "./output"
	defaultManifest  = "plan.yaml"
	defaultDebounce  = "500ms"
)

// UnmarshalYAML records whether enabled was written, so an omitted key can
// default to true.
func (t *TagsConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain TagsConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = TagsConfig(p)
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "enabled" {
			t.enabledSpecified = true
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Content.BaseDir == "" {
		cfg.Content.BaseDir = "."
	}
	if cfg.Content.Path == "" {
		cfg.Content.Path = posts.DefaultContentPath
	}
	if cfg.Content.FilePattern == "" {
		cfg.Content.FilePattern = posts.DefaultPostFilePattern
	}
	if cfg.Content.PageURL == "" {
		cfg.Content.PageURL = posts.DefaultPageURL
	}
	if !cfg.Tags.enabledSpecified {
		cfg.Tags.Enabled = true
	}
	if cfg.Tags.PageURL == "" {
		cfg.Tags.PageURL = posts.DefaultTagsPageURL
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = defaultOutputDir
	}
	if cfg.Output.Manifest == "" {
		cfg.Output.Manifest = defaultManifest
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce
	}
}
