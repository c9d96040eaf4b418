package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output string `short:"o" help:"Output directory; overrides output.directory"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	site := NewSite(cfg, g.Logger)
	if _, err := site.Build(); err != nil {
		// Keep watching so the next save can fix the content.
		g.Logger.Warn("Initial build failed", logfields.Error(err))
	}

	roots := []string{cfg.ContentRoot()}
	if cfg.Output.StaticDir != "" {
		static := filepath.Join(cfg.Content.BaseDir, filepath.FromSlash(cfg.Output.StaticDir))
		if dirExists(static) {
			roots = append(roots, static)
		}
	}
	watcher, err := watch.New(roots, cfg.DebounceDuration(),
		watch.WithLogger(g.Logger),
		watch.WithExclude(cfg.Output.Directory))
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	g.Logger.Info("Watching for changes", logfields.Path(cfg.ContentRoot()))
	return watcher.Run(ctx, func(context.Context) error {
		_, err := site.Build()
		return err
	})
}
