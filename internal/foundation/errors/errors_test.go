package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "config.yaml", file)
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.True(t, err.IsFatal())
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := FileSystemError("cannot read post").Build()
		wrapped := fmt.Errorf("run failed: %w", inner)

		assert.True(t, HasCategory(wrapped, CategoryFileSystem))
		assert.Equal(t, SeverityFatal, GetSeverity(wrapped))
	})
}

func TestErrorBuilder(t *testing.T) {
	original := stderrors.New("yaml: line 2: did not find expected key")
	err := WrapError(original, CategoryContent, "cannot deserialize front matter").
		Warning().
		WithContext("file", "post.md").
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.ErrorIs(t, err, original)
	assert.Contains(t, err.Error(), "[content:warning] cannot deserialize front matter")
	assert.False(t, err.IsFatal())

	withMore := err.WithContext("format", "yaml")
	_, had := err.Context().Get("format")
	assert.False(t, had, "WithContext must not mutate the receiver")
	format, _ := withMore.Context().GetString("format")
	assert.Equal(t, "yaml", format)
}

func TestConvenienceConstructors(t *testing.T) {
	cases := []struct {
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
	}{
		{ConfigError("x"), CategoryConfig, SeverityFatal},
		{ValidationError("x"), CategoryValidation, SeverityFatal},
		{FileSystemError("x"), CategoryFileSystem, SeverityFatal},
		{ContentError("x"), CategoryContent, SeverityWarning},
		{MediaError("x"), CategoryMedia, SeverityWarning},
		{RuntimeError("x"), CategoryRuntime, SeverityFatal},
		{InternalError("x"), CategoryInternal, SeverityFatal},
	}
	for _, tc := range cases {
		err := tc.builder.Build()
		assert.Equal(t, tc.category, err.Category())
		assert.Equal(t, tc.severity, err.Severity())
	}
}

func TestGetCategory_Unclassified(t *testing.T) {
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	assert.Equal(t, SeverityError, GetSeverity(stderrors.New("plain")))
}

func TestNewError_DefaultSeverity(t *testing.T) {
	assert.Equal(t, SeverityWarning, NewError(CategoryContent, "x").Build().Severity())
	assert.Equal(t, SeverityWarning, NewError(CategoryMedia, "x").Build().Severity())
	assert.Equal(t, SeverityError, NewError(CategoryNotFound, "x").Build().Severity())
}

func TestBuild_SnapshotsContext(t *testing.T) {
	b := FileSystemError("x").WithContext("path", "a")
	first := b.Build()
	b.WithContext("path", "b")

	p, _ := first.Context().GetString("path")
	assert.Equal(t, "a", p)
}

func TestErrorContext_Attrs(t *testing.T) {
	attrs := ErrorContext{"z": 1, "a": "x"}.Attrs()
	require.Len(t, attrs, 2)
	assert.Equal(t, "a", attrs[0].Key)
	assert.Equal(t, "z", attrs[1].Key)
}

func TestCategory_ExitCode(t *testing.T) {
	assert.Equal(t, 3, CategoryNotFound.ExitCode())
	assert.Equal(t, 11, CategoryMedia.ExitCode())
	assert.Equal(t, 12, CategoryRuntime.ExitCode())
	assert.Equal(t, 1, ErrorCategory("other").ExitCode())
}
