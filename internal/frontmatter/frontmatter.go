// Package frontmatter extracts the structured metadata block at the top of a
// markdown document into a caller-chosen type.
package frontmatter

import (
	"errors"
	"fmt"
	"log/slog"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/markdown"
)

var (
	// ErrMissing reports a document without a metadata block.
	ErrMissing = errors.New("no front matter block")
	// ErrUnclosed reports an opening fence that is never closed. The document
	// is treated as having no metadata.
	ErrUnclosed = fmt.Errorf("%w: opening fence has no closing marker", ErrMissing)
)

// Status describes how Result.Value was obtained.
type Status int

const (
	StatusParsed Status = iota
	StatusMissing
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusParsed:
		return "parsed"
	case StatusMissing:
		return "missing"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Defaulter is implemented by metadata types whose defaults are not the zero value.
type Defaulter interface {
	SetDefaults()
}

// Result is the outcome of extracting metadata from one document.
type Result[F any] struct {
	// Value is the decoded metadata, or the default instance when Status is
	// not StatusParsed.
	Value F
	// Body is the text after the closing marker, or the whole source when no
	// block was found.
	Body   []byte
	Raw    []byte
	Format markdown.Format
	Status Status
	Err    error
}

// OK reports whether metadata was decoded from a block.
func (r Result[F]) OK() bool { return r.Status == StatusParsed }

// NewDefault returns the default instance of F.
func NewDefault[F any]() F {
	var v F
	if d, ok := any(&v).(Defaulter); ok {
		d.SetDefaults()
	}
	return v
}

// Extractor holds the engine, deserializers and logger used by Extract.
// The zero value is ready to use.
type Extractor struct {
	Pipeline *markdown.Pipeline
	// YAML decodes "---" blocks; nil uses DefaultDeserializer.
	YAML Deserializer
	// TOML decodes "+++" blocks; nil uses TOML{}.
	TOML   Deserializer
	Logger *slog.Logger
}

type extractOptions struct {
	deserializer Deserializer
	file         string
}

// Option adjusts a single extraction.
type Option func(*extractOptions)

// WithDeserializer decodes the block with d regardless of its fence format.
func WithDeserializer(d Deserializer) Option {
	return func(o *extractOptions) { o.deserializer = d }
}

// WithFile names the document in diagnostics.
func WithFile(name string) Option {
	return func(o *extractOptions) { o.file = name }
}

// Extract uses a zero Extractor.
func Extract[F any](source []byte, opts ...Option) Result[F] {
	return ExtractWith[F](&Extractor{}, source, opts...)
}

// ExtractWith locates the metadata block of source with e's markdown engine
// and decodes it into F. Missing and undecodable metadata are logged as
// warnings and yield the default instance of F.
func ExtractWith[F any](e *Extractor, source []byte, opts ...Option) Result[F] {
	o := extractOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := e.logger()

	fm, found := e.pipeline().LocateFrontMatter(source)
	if !found {
		err := ErrMissing
		if markdown.StartsWithFence(source) {
			err = ErrUnclosed
		}
		logger.Warn("No front matter found, using defaults",
			logfields.File(o.file),
			logfields.Error(err))
		return Result[F]{
			Value:  NewDefault[F](),
			Body:   source,
			Status: StatusMissing,
			Err:    err,
		}
	}

	res := Result[F]{
		Body:   source[fm.End:],
		Raw:    fm.Raw,
		Format: fm.Format,
		Status: StatusParsed,
	}

	d := o.deserializer
	if d == nil {
		d = e.deserializerFor(fm.Format)
	}

	value := NewDefault[F]()
	if err := d.Deserialize(fm.Raw, &value); err != nil {
		res.Value = NewDefault[F]()
		res.Status = StatusInvalid
		res.Err = ferrors.WrapError(err, ferrors.CategoryContent, "cannot deserialize front matter").
			Warning().
			WithContext("file", o.file).
			WithContext("format", string(fm.Format)).
			Build()
		logger.Warn("Cannot deserialize front matter, using defaults",
			logfields.File(o.file),
			logfields.Format(string(fm.Format)),
			logfields.Error(err))
		return res
	}
	res.Value = value
	return res
}

func (e *Extractor) pipeline() *markdown.Pipeline {
	if e.Pipeline != nil {
		return e.Pipeline
	}
	return markdown.Default()
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Extractor) deserializerFor(format markdown.Format) Deserializer {
	if format == markdown.FormatTOML {
		if e.TOML != nil {
			return e.TOML
		}
		return TOML{}
	}
	if e.YAML != nil {
		return e.YAML
	}
	return DefaultDeserializer
}
