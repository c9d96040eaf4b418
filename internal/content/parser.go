// Package content turns a single markdown file into rendered HTML, typed
// metadata and the set of media folders it references.
package content

import (
	"log/slog"
	"os"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
	"git.home.luguber.info/inful/postbuilder/internal/media"
	"git.home.luguber.info/inful/postbuilder/internal/util/sets"
)

// ParsedContent is the immutable result of parsing one file.
type ParsedContent[F any] struct {
	HTML string
	// MediaFolders are content-root-relative folders holding referenced images.
	MediaFolders sets.Set[string]
	FrontMatter  F
	Status       frontmatter.Status
	// Fingerprint identifies the metadata block and body. Identical input
	// yields the same value on every run.
	Fingerprint  string
	MissingMedia []string
}

// Parser holds the engine, deserializers and logger shared by every file of
// a run. The zero value uses the process-wide defaults.
type Parser struct {
	Pipeline *markdown.Pipeline
	// YAML overrides frontmatter.DefaultDeserializer for "---" blocks.
	YAML   frontmatter.Deserializer
	TOML   frontmatter.Deserializer
	Logger *slog.Logger
}

func (p *Parser) pipeline() *markdown.Pipeline {
	if p.Pipeline != nil {
		return p.Pipeline
	}
	return markdown.Default()
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Parser) extractor() *frontmatter.Extractor {
	return &frontmatter.Extractor{
		Pipeline: p.pipeline(),
		YAML:     p.YAML,
		TOML:     p.TOML,
		Logger:   p.logger(),
	}
}

// ParseFile reads path, decodes its metadata into F, renders the remaining
// markdown and rewrites image references against contentRoot.
// Only a failure to read the file is returned as an error.
func ParseFile[F any](p *Parser, path, contentRoot string, opts ...frontmatter.Option) (*ParsedContent[F], error) {
	source, err := readSource(path)
	if err != nil {
		return nil, err
	}

	opts = append([]frontmatter.Option{frontmatter.WithFile(path)}, opts...)
	fm := frontmatter.ExtractWith[F](p.extractor(), source, opts...)

	html := p.render(path, fm.Body)
	rewritten := media.Rewrite(html, path, contentRoot, p.logger())

	return &ParsedContent[F]{
		HTML:         rewritten.HTML,
		MediaFolders: rewritten.Folders,
		FrontMatter:  fm.Value,
		Status:       fm.Status,
		Fingerprint:  Fingerprint(fm.Raw, fm.Body),
		MissingMedia: rewritten.Missing,
	}, nil
}

// ParseBody renders the whole of path without decoding metadata. A leading
// metadata block is recognized by the engine and produces no output.
func (p *Parser) ParseBody(path, contentRoot string) (string, error) {
	source, err := readSource(path)
	if err != nil {
		return "", err
	}
	html := p.render(path, source)
	return media.Rewrite(html, path, contentRoot, p.logger()).HTML, nil
}

func (p *Parser) render(path string, body []byte) string {
	html, err := p.pipeline().ToHTML(body)
	if err != nil {
		p.logger().Warn("Cannot render markdown", logfields.File(path), logfields.Error(err))
		return ""
	}
	return html
}

func readSource(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot read content file").
			Fatal().
			WithContext("file", path).
			Build()
	}
	return source, nil
}
