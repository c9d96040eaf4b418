package posts

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/plan"
)

// writeTree creates files below base; values are file contents.
func writeTree(t *testing.T, base string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(base, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func blogTree(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"Content/Blog/a.md":                    "---\ntitle: A\ntags: [Go, Web]\nextra:\n  author: ada\n---\n## Hello\n\n![pic](media/a.png)\n",
		"Content/Blog/draft.md":                "---\ntitle: Secret\ndraft: true\ntags: [Secret]\n---\n![s](secret/s.png)\n",
		"Content/Blog/en/post-folder/index.md": "---\ntitle: Nested\npublished: 2024-01-02\ntags: [Go]\n---\nnested\n",
		"Content/Blog/index.md":                "---\ntitle: Home\n---\nwelcome\n",
		"Content/Blog/notes.txt":               "not markdown",
		"Content/Blog/media/a.png":             "png",
		"Content/Blog/secret/s.png":            "png",
	})
	return base
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func newBlogService(base string, tagsEnabled bool) (*Service[BlogFrontMatter], *bytes.Buffer) {
	logger, logs := captureLogger()
	return NewService(Options[BlogFrontMatter]{
		BaseDir: base,
		Tags:    TagOptions{Enabled: tagsEnabled},
		Logger:  logger,
	}), logs
}

func routes(pages []plan.PageToGenerate) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Route+" -> "+p.OutputPath)
	}
	return out
}

func TestRun_IndexesPostsPagesAndCopies(t *testing.T) {
	base := blogTree(t)
	svc, logs := newBlogService(base, true)
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	posts := svc.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "a", posts[0].URL)
	assert.Equal(t, "en/post-folder", posts[1].URL)
	assert.Equal(t, "", posts[2].URL)
	assert.Equal(t, "A", posts[0].FrontMatter.Title)
	assert.Contains(t, posts[0].HTML, `<h2 id="hello">Hello</h2>`)
	assert.Contains(t, posts[0].HTML, `src="Content/Blog/media/a.png"`)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), posts[1].FrontMatter.Published)
	assert.NotEmpty(t, posts[0].Fingerprint)
	assert.Equal(t, filepath.Join(base, "Content", "Blog", "a.md"), posts[0].SourcePath)

	assert.Equal(t, []string{
		"blog/a -> blog/a.html",
		"blog/en/post-folder -> blog/en/post-folder.html",
		"blog -> blog/index.html",
		"tags/go -> tags/go.html",
		"tags/web -> tags/web.html",
	}, routes(pl.Pages()))
	assert.Equal(t, map[string]any{"author": "ada"}, pl.Pages()[0].Metadata)

	assert.Equal(t, []plan.ContentToCopy{
		{Source: "Content/Blog/media", Destination: "Content/Blog/media"},
	}, pl.Copies())

	assert.NotEmpty(t, svc.RunID())
	assert.Contains(t, logs.String(), "run_id="+svc.RunID())
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestRun_DraftsAreInvisible(t *testing.T) {
	svc, _ := newBlogService(blogTree(t), true)
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	for _, p := range svc.Posts() {
		assert.NotEqual(t, "Secret", p.FrontMatter.Title)
	}
	for _, tag := range svc.Tags() {
		assert.NotEqual(t, "Secret", tag.Name)
	}
	for _, page := range pl.Pages() {
		assert.NotContains(t, page.Route, "draft")
		assert.NotContains(t, page.Route, "secret")
	}
	for _, c := range pl.Copies() {
		assert.NotContains(t, c.Source, "secret")
	}
}

func TestRun_TagIdentity(t *testing.T) {
	svc, _ := newBlogService(blogTree(t), false)

	require.NoError(t, svc.Run(plan.New()))

	tags := svc.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, "Go", tags[0].Name)
	assert.Equal(t, "go", tags[0].EncodedName)
	assert.Equal(t, "Web", tags[1].Name)

	posts := svc.Posts()
	require.Len(t, posts[0].Tags, 2)
	require.Len(t, posts[1].Tags, 1)
	assert.Same(t, posts[0].Tags[0], posts[1].Tags[0])
	assert.Same(t, tags[0], posts[1].Tags[0])
	assert.Empty(t, posts[2].Tags)
}

func TestRun_TagPagesDisabled(t *testing.T) {
	svc, _ := newBlogService(blogTree(t), false)
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	for _, p := range pl.Pages() {
		assert.False(t, strings.HasPrefix(p.Route, "tags/"), p.Route)
	}
}

func TestRun_RepeatedRunsAreIdentical(t *testing.T) {
	svc, _ := newBlogService(blogTree(t), true)
	first, second := plan.New(), plan.New()

	require.NoError(t, svc.Run(first))
	firstRun := svc.RunID()
	firstTags := svc.Tags()
	require.NoError(t, svc.Run(second))

	assert.Equal(t, first.Pages(), second.Pages())
	assert.Equal(t, first.Copies(), second.Copies())
	assert.Len(t, svc.Posts(), 3)
	assert.Equal(t, firstTags, svc.Tags())
	assert.NotSame(t, firstTags[0], svc.Tags()[0])
	assert.NotEqual(t, firstRun, svc.RunID())
}

func TestRun_WorkerCountDoesNotChangeOrder(t *testing.T) {
	base := t.TempDir()
	files := map[string]string{}
	for _, name := range []string{"k", "b", "z", "a", "m", "c", "y", "d"} {
		files["Content/Blog/"+name+".md"] = "---\ntitle: " + name + "\ntags: [" + name + ", shared]\n---\nbody\n"
	}
	writeTree(t, base, files)

	var results [][]string
	for _, workers := range []int{1, 8} {
		svc := NewService(Options[BlogFrontMatter]{BaseDir: base, Workers: workers, Tags: TagOptions{Enabled: true}})
		pl := plan.New()
		require.NoError(t, svc.Run(pl))
		results = append(results, routes(pl.Pages()))
		assert.Equal(t, "a", svc.Tags()[0].Name)
		assert.Equal(t, "shared", svc.Tags()[1].Name)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, "blog/a -> blog/a.html", results[0][0])
}

type plainMeta struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
	Draft bool     `yaml:"draft"`
}

func TestRun_WithoutCapabilities(t *testing.T) {
	base := blogTree(t)
	logger, logs := captureLogger()
	svc := NewService(Options[plainMeta]{BaseDir: base, Logger: logger, Tags: TagOptions{Enabled: true}})
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	// Without Drafter the draft flag means nothing.
	assert.Len(t, svc.Posts(), 4)
	assert.Empty(t, svc.Tags())
	for _, p := range svc.Posts() {
		assert.Empty(t, p.Tags)
	}
	assert.Len(t, pl.Pages(), 4)
	assert.IsType(t, plainMeta{}, pl.Pages()[0].Metadata)
	assert.Equal(t, 1, strings.Count(logs.String(), "level=WARN"))
	assert.Contains(t, logs.String(), "does not expose tags")
}

func TestRun_CapabilityMismatchSilentWhenTagPagesDisabled(t *testing.T) {
	logger, logs := captureLogger()
	svc := NewService(Options[plainMeta]{BaseDir: blogTree(t), Logger: logger})

	require.NoError(t, svc.Run(plan.New()))
	assert.NotContains(t, logs.String(), "level=WARN")
}

type pointerMeta struct {
	Title string   `yaml:"title"`
	Draft bool     `yaml:"draft"`
	Tags  []string `yaml:"tags"`
}

func (m *pointerMeta) IsDraft() bool      { return m.Draft }
func (m *pointerMeta) TagNames() []string { return m.Tags }

func TestRun_PointerReceiverCapabilities(t *testing.T) {
	svc := NewService(Options[pointerMeta]{BaseDir: blogTree(t)})

	require.NoError(t, svc.Run(plan.New()))

	assert.Len(t, svc.Posts(), 3)
	assert.Len(t, svc.Tags(), 2)
}

func TestRun_AfterIndexedHookRunsOnceAndRejectsReentry(t *testing.T) {
	calls := 0
	var reentry error
	var hookPosts int
	svc := NewService(Options[BlogFrontMatter]{
		BaseDir: blogTree(t),
		AfterIndexed: func(s *Service[BlogFrontMatter], pl *plan.Plan) {
			calls++
			hookPosts = len(s.Posts())
			reentry = s.Run(pl)
			pl.AddPage(plan.PageToGenerate{Route: "extra", OutputPath: "extra.html"})
		},
	})
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, hookPosts)
	assert.ErrorIs(t, reentry, ErrRunInProgress)
	pages := pl.Pages()
	assert.Equal(t, "extra", pages[len(pages)-1].Route)
}

func TestRun_ConcurrentRunsRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	svc := NewService(Options[BlogFrontMatter]{
		BaseDir: blogTree(t),
		AfterIndexed: func(*Service[BlogFrontMatter], *plan.Plan) {
			close(entered)
			<-release
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, svc.Run(plan.New()))
	}()
	<-entered
	assert.ErrorIs(t, svc.Run(plan.New()), ErrRunInProgress)
	close(release)
	wg.Wait()
}

func TestRun_MissingContentRoot(t *testing.T) {
	svc, logs := newBlogService(t.TempDir(), false)

	err := svc.Run(plan.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentRootNotFound)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Empty(t, svc.Posts())
}

func TestRun_ContentRootIsAFile(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"Content/Blog": "file"})
	svc, _ := newBlogService(base, false)

	assert.ErrorIs(t, svc.Run(plan.New()), ErrContentRootNotFound)
}

func TestRun_UnreadableFileAbortsRun(t *testing.T) {
	base := blogTree(t)
	require.NoError(t, os.Symlink(filepath.Join(base, "nowhere.md"), filepath.Join(base, "Content", "Blog", "broken.md")))
	svc, _ := newBlogService(base, false)
	pl := plan.New()

	err := svc.Run(pl)

	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	assert.Empty(t, pl.Pages())
	assert.Empty(t, svc.Posts())
}

func TestRun_InvalidPattern(t *testing.T) {
	svc := NewService(Options[BlogFrontMatter]{BaseDir: blogTree(t), PostFilePattern: "["})

	err := svc.Run(plan.New())

	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestRun_NilPlan(t *testing.T) {
	svc, _ := newBlogService(blogTree(t), false)
	assert.True(t, ferrors.HasCategory(svc.Run(nil), ferrors.CategoryValidation))
}

func TestRun_CustomOptions(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"site/posts/one.markdown": "---\ntitle: One\ntags: [Go, go]\n---\n",
		"site/posts/two.md":       "---\ntitle: Two\n---\n",
	})
	logger, logs := captureLogger()
	svc := NewService(Options[BlogFrontMatter]{
		BaseDir:         base,
		ContentPath:     "site/posts",
		PostFilePattern: "*.markdown",
		PageURL:         "/articles/",
		Logger:          logger,
		Tags: TagOptions{
			Enabled: true,
			PageURL: "topics",
			Encode:  strings.ToLower,
		},
	})
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	assert.Equal(t, []string{
		"articles/one -> articles/one.html",
		"topics/go -> topics/go.html",
		"topics/go-2 -> topics/go-2.html",
	}, routes(pl.Pages()))
	require.Len(t, svc.Tags(), 2)
	assert.Equal(t, "go-2", svc.Tags()[1].EncodedName)
	assert.Contains(t, logs.String(), "Tag names share a page name")
}

func TestRun_EveryTagGetsItsOwnPage(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"Content/Blog/langs.md": "---\ntitle: Langs\ntags: [Go, go, C++, C, Go, C#, \"!!\"]\n---\n",
	})
	svc, _ := newBlogService(base, true)
	pl := plan.New()

	require.NoError(t, svc.Run(pl))

	assert.Equal(t, []string{
		"blog/langs -> blog/langs.html",
		"tags/go -> tags/go.html",
		"tags/go-2 -> tags/go-2.html",
		"tags/c-plus-plus -> tags/c-plus-plus.html",
		"tags/c -> tags/c.html",
		"tags/c-sharp -> tags/c-sharp.html",
		"tags/tag -> tags/tag.html",
	}, routes(pl.Pages()))

	require.Len(t, svc.Tags(), 6)
	post := svc.Posts()[0]
	names := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"Go", "go", "C++", "C", "C#", "!!"}, names)
}

func TestRun_InaccessibleDirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	base := blogTree(t)
	writeTree(t, base, map[string]string{"Content/Blog/locked/x.md": "---\ntitle: Locked\n---\n"})
	locked := filepath.Join(base, "Content", "Blog", "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	rec := &countingRecorder{files: map[metrics.FileResult]int{}}
	logger, _ := captureLogger()
	svc := NewService(Options[BlogFrontMatter]{BaseDir: base, Recorder: rec, Logger: logger})

	require.NoError(t, svc.Run(plan.New()))

	var titles []string
	for _, p := range svc.Posts() {
		titles = append(titles, p.FrontMatter.Title)
	}
	assert.ElementsMatch(t, []string{"A", "Nested", "Home"}, titles)
	assert.Equal(t, 1, rec.diagnostics[metrics.DiagnosticUnreadable])
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu          sync.Mutex
	files       map[metrics.FileResult]int
	outcomes    []metrics.RunOutcome
	posts       int
	diagnostics map[metrics.Diagnostic]int
}

func (c *countingRecorder) AddDiagnostics(kind metrics.Diagnostic, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.diagnostics == nil {
		c.diagnostics = map[metrics.Diagnostic]int{}
	}
	c.diagnostics[kind] += n
}

func (c *countingRecorder) IncFileResult(r metrics.FileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[r]++
}

func (c *countingRecorder) IncRunOutcome(o metrics.RunOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *countingRecorder) SetIndexed(posts, _, _ int) { c.posts = posts }

func TestRun_RecordsMetrics(t *testing.T) {
	base := blogTree(t)
	writeTree(t, base, map[string]string{"Content/Blog/zz.md": "no front matter\n"})
	rec := &countingRecorder{files: map[metrics.FileResult]int{}}
	logger, _ := captureLogger()
	svc := NewService(Options[BlogFrontMatter]{BaseDir: base, Recorder: rec, Logger: logger})

	require.NoError(t, svc.Run(plan.New()))
	require.Error(t, NewService(Options[BlogFrontMatter]{BaseDir: t.TempDir(), Recorder: rec, Logger: logger}).Run(plan.New()))

	assert.Equal(t, 3, rec.files[metrics.FileParsed])
	assert.Equal(t, 1, rec.files[metrics.FileDraft])
	assert.Equal(t, 1, rec.files[metrics.FileMissingMetadata])
	assert.Equal(t, []metrics.RunOutcome{metrics.OutcomeSuccess, metrics.OutcomeFailed}, rec.outcomes)
	assert.Equal(t, 4, rec.posts)
}

func TestURLFromPath(t *testing.T) {
	cases := map[string]string{
		"post.md":                   "post",
		"en/post.md":                "en/post",
		"en/post-folder/index.md":   "en/post-folder",
		"index.md":                  "",
		filepath.Join("cs", "x.md"): "cs/x",
		"en/index-of-things.md":     "en/index-of-things",
		"en/reindex.md":             "en/reindex",
		"archive.2024.md":           "archive.2024",
	}
	for in, want := range cases {
		assert.Equal(t, want, URLFromPath(in), in)
	}
}

func TestPageLocation(t *testing.T) {
	r, o := pageLocation("blog", "en/a")
	assert.Equal(t, "blog/en/a", r)
	assert.Equal(t, "blog/en/a.html", o)

	r, o = pageLocation("", "a")
	assert.Equal(t, "a", r)
	assert.Equal(t, "a.html", o)

	r, o = pageLocation("", "")
	assert.Equal(t, "", r)
	assert.Equal(t, "index.html", o)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrRunInProgress, ErrContentRootNotFound))
}
