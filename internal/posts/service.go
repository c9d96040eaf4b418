// Package posts indexes a tree of markdown files into posts and tags and
// appends the resulting pages and media copy jobs to a plan.
package posts

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/postbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/plan"
	"git.home.luguber.info/inful/postbuilder/internal/util/sets"
)

const (
	DefaultContentPath     = "Content/Blog"
	DefaultPostFilePattern = "*.md"
	DefaultPageURL         = "blog"
	DefaultTagsPageURL     = "tags"
)

// Tag is one taxonomy entry. A run creates exactly one *Tag per name.
type Tag struct {
	Name        string
	EncodedName string
}

// Post is one published markdown file.
type Post[F any] struct {
	FrontMatter F
	// URL is the slash separated path below the content root without
	// extension, with a trailing "index" segment removed.
	URL  string
	HTML string
	// Tags lists each of the post's tags once, in front matter order.
	Tags        []*Tag
	SourcePath  string
	Fingerprint string
}

// TagOptions controls tag indexing.
type TagOptions struct {
	// Enabled adds one page per tag to the plan.
	Enabled bool
	PageURL string
	// Encode produces Tag.EncodedName; nil uses Slug.
	Encode func(name string) string
}

// Options configures a Service. Zero fields take the package defaults.
type Options[F any] struct {
	BaseDir         string
	ContentPath     string
	PostFilePattern string
	PageURL         string
	// Workers bounds parallel parsing; zero uses GOMAXPROCS.
	Workers int
	Tags    TagOptions
	// AfterIndexed runs once at the end of every successful Run.
	AfterIndexed func(svc *Service[F], pl *plan.Plan)
	Parser       *content.Parser
	// FrontMatter options are applied to every file.
	FrontMatter []frontmatter.Option
	Logger      *slog.Logger
	Recorder    metrics.Recorder
}

// Service indexes posts. Posts and Tags reflect the last completed Run.
type Service[F any] struct {
	opts    Options[F]
	running atomic.Bool

	posts []*Post[F]
	tags  []*Tag
	runID string
}

// NewService applies defaults to opts.
func NewService[F any](opts Options[F]) *Service[F] {
	if opts.ContentPath == "" {
		opts.ContentPath = DefaultContentPath
	}
	if opts.PostFilePattern == "" {
		opts.PostFilePattern = DefaultPostFilePattern
	}
	if opts.PageURL == "" {
		opts.PageURL = DefaultPageURL
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Tags.PageURL == "" {
		opts.Tags.PageURL = DefaultTagsPageURL
	}
	if opts.Tags.Encode == nil {
		opts.Tags.Encode = Slug
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Parser == nil {
		opts.Parser = &content.Parser{Logger: opts.Logger}
	}
	return &Service[F]{opts: opts}
}

// Options returns the effective options.
func (s *Service[F]) Options() Options[F] { return s.opts }

// Posts returns the posts of the last run in discovery order.
func (s *Service[F]) Posts() []*Post[F] { return s.posts }

// Tags returns the tags of the last run in first-seen order.
func (s *Service[F]) Tags() []*Tag { return s.tags }

// RunID identifies the last run.
func (s *Service[F]) RunID() string { return s.runID }

// ContentRoot is BaseDir joined with ContentPath.
func (s *Service[F]) ContentRoot() string {
	return filepath.Join(s.opts.BaseDir, filepath.FromSlash(s.opts.ContentPath))
}

// Run rescans the content root, rebuilds Posts and Tags, and appends pages and
// copy jobs to pl. Recoverable problems are logged; unreadable files and a
// missing content root abort the run.
func (s *Service[F]) Run(pl *plan.Plan) error {
	if pl == nil {
		return ferrors.ValidationError("plan is nil").Build()
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	s.runID = uuid.NewString()
	s.posts, s.tags = nil, nil
	logger := s.opts.Logger.With(logfields.RunID(s.runID))
	rec := s.opts.Recorder
	start := time.Now()

	err := s.run(pl, logger)
	rec.ObserveRunDuration(time.Since(start))
	if err != nil {
		rec.IncRunOutcome(metrics.OutcomeFailed)
		logger.Error("Indexing failed", logfields.Error(err))
		return err
	}
	rec.IncRunOutcome(metrics.OutcomeSuccess)
	logger.Info("Indexing complete",
		slog.Int("posts", len(s.posts)),
		slog.Int("tags", len(s.tags)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	if s.opts.AfterIndexed != nil {
		s.opts.AfterIndexed(s, pl)
	}
	return nil
}

func (s *Service[F]) run(pl *plan.Plan, logger *slog.Logger) error {
	rec := s.opts.Recorder
	root := s.ContentRoot()

	stageStart := time.Now()
	files, err := s.discover(root, logger)
	rec.ObserveStageDuration(metrics.StageScan, time.Since(stageStart))
	if err != nil {
		return err
	}
	logger.Debug("Discovered content files", logfields.Path(root), logfields.Count(len(files)))

	stageStart = time.Now()
	parsed, err := s.parseAll(files)
	rec.ObserveStageDuration(metrics.StageParse, time.Since(stageStart))
	if err != nil {
		return err
	}

	stageStart = time.Now()
	caps := probe[F]()
	posts, folders := s.aggregate(root, files, parsed, caps, pl, logger)
	rec.ObserveStageDuration(metrics.StageAggregate, time.Since(stageStart))

	stageStart = time.Now()
	tags := s.indexTags(posts, caps, pl, logger)
	rec.ObserveStageDuration(metrics.StageTags, time.Since(stageStart))

	s.posts, s.tags = posts, tags
	rec.SetIndexed(len(posts), len(tags), folders)
	return nil
}

// parseAll parses files in parallel. Results keep the order of files.
func (s *Service[F]) parseAll(files []string) ([]*content.ParsedContent[F], error) {
	results := make([]*content.ParsedContent[F], len(files))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, file := range files {
		g.Go(func() error {
			parsed, err := content.ParseFile[F](s.opts.Parser, file, s.opts.ContentPath, s.opts.FrontMatter...)
			if err != nil {
				return err
			}
			results[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// aggregate turns parse results into posts, pages and copy jobs on the
// calling goroutine, in discovery order.
func (s *Service[F]) aggregate(root string, files []string, parsed []*content.ParsedContent[F], caps capabilities, pl *plan.Plan, logger *slog.Logger) ([]*Post[F], int) {
	rec := s.opts.Recorder
	folders := sets.New[string]()
	posts := make([]*Post[F], 0, len(parsed))

	for i, res := range parsed {
		file := files[i]
		if caps.drafts {
			if d, ok := as[Drafter](&res.FrontMatter); ok && d.IsDraft() {
				rec.IncFileResult(metrics.FileDraft)
				logger.Debug("Skipping draft", logfields.File(file))
				continue
			}
		}
		rec.IncFileResult(fileResult(res.Status))
		rec.AddDiagnostics(metrics.DiagnosticMissingMedia, len(res.MissingMedia))

		rel, err := filepath.Rel(root, file)
		if err != nil {
			// WalkDir only yields paths below root.
			rel = filepath.Base(file)
		}
		post := &Post[F]{
			FrontMatter: res.FrontMatter,
			URL:         URLFromPath(rel),
			HTML:        res.HTML,
			SourcePath:  file,
			Fingerprint: res.Fingerprint,
		}
		posts = append(posts, post)
		folders.Union(res.MediaFolders)

		route, output := pageLocation(s.opts.PageURL, post.URL)
		pl.AddPage(plan.PageToGenerate{
			Route:      route,
			OutputPath: output,
			Metadata:   pageMetadata(&post.FrontMatter, caps),
		})
		logger.Debug("Indexed post", logfields.File(file), logfields.Route(route))
	}

	for _, folder := range sets.Sorted(folders) {
		pl.AddCopy(plan.ContentToCopy{Source: folder, Destination: folder})
	}
	return posts, folders.Len()
}

func fileResult(status frontmatter.Status) metrics.FileResult {
	switch status {
	case frontmatter.StatusMissing:
		return metrics.FileMissingMetadata
	case frontmatter.StatusInvalid:
		return metrics.FileInvalidMetadata
	default:
		return metrics.FileParsed
	}
}

func pageMetadata[F any](fm *F, caps capabilities) any {
	if caps.metadata {
		if m, ok := as[MetadataCarrier](fm); ok {
			return m.PageMetadata()
		}
	}
	return *fm
}

// URLFromPath converts a path relative to the content root into a post URL:
// "en/post-folder/index.md" becomes "en/post-folder", and a root "index.md"
// becomes "".
func URLFromPath(rel string) string {
	u := filepath.ToSlash(rel)
	u = strings.TrimSuffix(u, path.Ext(u))
	if u == "index" {
		return ""
	}
	return strings.TrimSuffix(u, "/index")
}

// pageLocation joins a page URL prefix and a slug into a route and an output
// path. An empty slug maps to the prefix itself and its index.html.
func pageLocation(prefix, slug string) (route, output string) {
	prefix = strings.Trim(prefix, "/")
	if slug == "" {
		return prefix, path.Join(prefix, "index.html")
	}
	return path.Join(prefix, slug), path.Join(prefix, slug+".html")
}

func validatePattern(pattern string) error {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return ferrors.WrapError(fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err), ferrors.CategoryConfig, "invalid post file pattern").
			Fatal().
			Build()
	}
	return nil
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return ferrors.WrapError(fmt.Errorf("%w: %s: %w", ErrContentRootNotFound, root, err), ferrors.CategoryNotFound, "content root not found").
			Fatal().
			WithContext("path", root).
			Build()
	}
	if !info.IsDir() {
		return ferrors.WrapError(fmt.Errorf("%w: %s is not a directory", ErrContentRootNotFound, root), ferrors.CategoryNotFound, "content root not found").
			Fatal().
			WithContext("path", root).
			Build()
	}
	return nil
}
