package posts

import "time"

// Author is a post author.
type Author struct {
	Name       string `yaml:"name" toml:"name"`
	GitHubName string `yaml:"github" toml:"github"`
	URL        string `yaml:"url" toml:"url"`
}

// BlogFrontMatter is a ready-made front matter schema for blog posts.
type BlogFrontMatter struct {
	Title     string         `yaml:"title" toml:"title"`
	Lead      string         `yaml:"lead" toml:"lead"`
	Published time.Time      `yaml:"published" toml:"published"`
	Tags      []string       `yaml:"tags" toml:"tags"`
	Authors   []Author       `yaml:"authors" toml:"authors"`
	Image     string         `yaml:"image" toml:"image"`
	Draft     bool           `yaml:"draft" toml:"draft"`
	Extra     map[string]any `yaml:"extra" toml:"extra"`
}

func (b BlogFrontMatter) IsDraft() bool      { return b.Draft }
func (b BlogFrontMatter) TagNames() []string { return b.Tags }
func (b BlogFrontMatter) PageMetadata() any  { return b.Extra }
