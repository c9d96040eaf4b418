package commands

import (
	"io"
	"os"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct{}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	return RunPlan(os.Stdout, NewSite(cfg, g.Logger))
}

// RunPlan indexes site and writes the manifest YAML to w.
func RunPlan(w io.Writer, site *Site) error {
	m, err := site.Index()
	if err != nil {
		return err
	}
	data, err := m.ToYAML()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
