package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/postbuilder/internal/assets"
	"git.home.luguber.info/inful/postbuilder/internal/config"
	"git.home.luguber.info/inful/postbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/plan"
	"git.home.luguber.info/inful/postbuilder/internal/posts"
)

// Site wires the configured markdown engine, indexer, asset mirror and
// metrics for one CLI invocation.
type Site struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prom.Registry
	service  *posts.Service[posts.BlogFrontMatter]
}

// NewSite builds the indexer described by cfg. The configured markdown
// engine also becomes the process default.
func NewSite(cfg *config.Config, logger *slog.Logger) *Site {
	if logger == nil {
		logger = slog.Default()
	}
	pipeline := markdown.NewPipeline(cfg.MarkdownOptions())
	markdown.SetDefault(pipeline)

	s := &Site{cfg: cfg, logger: logger}
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Textfile != "" {
		s.registry = prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(s.registry)
	}

	s.service = posts.NewService(posts.Options[posts.BlogFrontMatter]{
		BaseDir:         cfg.Content.BaseDir,
		ContentPath:     cfg.Content.Path,
		PostFilePattern: cfg.Content.FilePattern,
		PageURL:         cfg.Content.PageURL,
		Workers:         cfg.Content.Workers,
		Tags: posts.TagOptions{
			Enabled: cfg.Tags.Enabled,
			PageURL: cfg.Tags.PageURL,
		},
		Parser: &content.Parser{
			Pipeline: pipeline,
			YAML:     cfg.YAMLDeserializer(),
			Logger:   logger,
		},
		Logger:   logger,
		Recorder: rec,
	})
	return s
}

// Index runs the indexer into a fresh plan and returns its manifest.
func (s *Site) Index() (*plan.Manifest, error) {
	pl := plan.New()
	if err := s.service.Run(pl); err != nil {
		return nil, err
	}
	return pl.Snapshot(s.service.RunID(), len(s.service.Posts()), len(s.service.Tags()), time.Now()), nil
}

// Build indexes the content, mirrors every copy job and the static folder
// into the output directory and writes the manifest. Metrics are written
// whether or not the build succeeds.
func (s *Site) Build() (*plan.Manifest, error) {
	defer s.writeMetrics()

	m, err := s.Index()
	if err != nil {
		return nil, err
	}

	out := s.cfg.Output.Directory
	if err := os.MkdirAll(out, 0o750); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create output directory").
			Fatal().
			WithContext("path", out).
			Build()
	}

	start := time.Now()
	for _, job := range m.Copies {
		src := filepath.Join(s.cfg.Content.BaseDir, filepath.FromSlash(job.Source))
		dst := filepath.Join(out, filepath.FromSlash(job.Destination))
		if err := assets.Mirror(src, dst, ignoredBelow(s.cfg.Output.IgnoredPaths, job.Destination), s.logger); err != nil {
			return nil, err
		}
	}
	if err := s.mirrorStatic(out); err != nil {
		return nil, err
	}
	s.logger.Debug("Copied content folders", logfields.Count(len(m.Copies)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	path := s.cfg.ManifestPath()
	if err := m.WriteFile(path); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write plan manifest").
			Fatal().
			WithContext("path", path).
			Build()
	}
	s.logger.Info("Plan written", logfields.Path(path),
		slog.Int("pages", len(m.Pages)),
		slog.Int("copies", len(m.Copies)))
	return m, nil
}

func (s *Site) mirrorStatic(out string) error {
	if s.cfg.Output.StaticDir == "" {
		return nil
	}
	src := filepath.Join(s.cfg.Content.BaseDir, filepath.FromSlash(s.cfg.Output.StaticDir))
	if !dirExists(src) {
		s.logger.Debug("Static folder not present; skipping", logfields.Path(src))
		return nil
	}
	return assets.Mirror(src, out, s.cfg.Output.IgnoredPaths, s.logger)
}

func (s *Site) writeMetrics() {
	if s.registry == nil {
		return
	}
	if err := metrics.WriteTextfile(s.cfg.Metrics.Textfile, s.registry); err != nil {
		s.logger.Warn("Cannot write metrics textfile", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
	}
}

// ignoredBelow rewrites output-relative ignore paths to be relative to the
// copy destination dest, dropping those outside it.
func ignoredBelow(ignored []string, dest string) []string {
	dest = strings.Trim(filepath.ToSlash(dest), "/")
	var out []string
	for _, p := range ignored {
		p = strings.Trim(filepath.ToSlash(filepath.Clean(p)), "/")
		if rel, ok := strings.CutPrefix(p, dest+"/"); ok && rel != "" {
			out = append(out, filepath.FromSlash(rel))
		}
	}
	return out
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
