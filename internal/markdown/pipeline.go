package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options controls how the shared goldmark engine is assembled.
type Options struct {
	// Extensions lists goldmark extensions by name (see IsKnownExtension).
	// Empty means GFM.
	Extensions []string
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// SafeMode drops raw HTML from the output.
	SafeMode bool
}

// Pipeline renders markdown to HTML. It is stateless after construction and
// safe for concurrent use.
type Pipeline struct {
	md   goldmark.Markdown
	opts Options
}

// NewPipeline builds a goldmark engine with auto heading IDs and the
// front matter fence extension always enabled.
func NewPipeline(opts Options) *Pipeline {
	exts := append(collectExtensions(opts.Extensions), FrontMatterFences)

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Pipeline{md: md, opts: opts}
}

var defaultPipeline atomic.Pointer[Pipeline]

// Default returns the process-wide pipeline, creating it with zero Options on
// first use.
func Default() *Pipeline {
	if p := defaultPipeline.Load(); p != nil {
		return p
	}
	defaultPipeline.CompareAndSwap(nil, NewPipeline(Options{}))
	return defaultPipeline.Load()
}

// SetDefault replaces the process-wide pipeline. A nil p restores the built-in default.
func SetDefault(p *Pipeline) {
	if p == nil {
		p = NewPipeline(Options{})
	}
	defaultPipeline.Store(p)
}

// Options returns the options the pipeline was built with.
func (p *Pipeline) Options() Options { return p.opts }

// Parse parses source into a goldmark AST.
func (p *Pipeline) Parse(source []byte) gmast.Node {
	return p.md.Parser().Parse(text.NewReader(source))
}

// ToHTML renders markdown source to HTML. A leading front matter block is
// recognised and rendered as nothing.
func (p *Pipeline) ToHTML(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// IsKnownExtension reports whether name is a registered extension.
func IsKnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
