package commands

import "fmt"

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory; overrides output.directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}

	m, err := NewSite(cfg, g.Logger).Build()
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d posts and %d tags into %s\n", m.Posts, m.Tags, cfg.ManifestPath())
	return nil
}
