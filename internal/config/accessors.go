package config

import (
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/postbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
)

// ContentRoot is the directory scanned for posts.
func (c *Config) ContentRoot() string {
	return filepath.Join(c.Content.BaseDir, filepath.FromSlash(c.Content.Path))
}

// ManifestPath resolves the manifest location against the output directory.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Output.Manifest) {
		return c.Output.Manifest
	}
	return filepath.Join(c.Output.Directory, c.Output.Manifest)
}

// DebounceDuration returns watch.debounce; Validate guarantees it parses.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultDebounce)
	}
	return d
}

// MarkdownOptions maps the markdown section onto the engine options.
func (c *Config) MarkdownOptions() markdown.Options {
	return markdown.Options{
		Extensions: c.Markdown.Extensions,
		HardWraps:  c.Markdown.HardWraps,
		SafeMode:   c.Markdown.SafeMode,
	}
}

// YAMLDeserializer builds the deserializer for "---" metadata blocks.
func (c *Config) YAMLDeserializer() frontmatter.YAML {
	return frontmatter.YAML{
		Naming:      frontmatter.NamingConvention(c.FrontMatter.Naming),
		KnownFields: c.FrontMatter.KnownFields,
	}
}
