// Package errors provides the classified error primitives used across postbuilder.
//
// A ClassifiedError carries a category (config, filesystem, content, ...) and a
// severity (fatal, error, warning, info) next to the message, cause and a small
// structured context. The CLI adapter maps categories to exit codes and
// severities to slog levels.
//
// Example usage:
//
//	err := errors.FileSystemError("cannot read post").
//		WithContext("file", path).
//		WithCause(readErr).
//		Build()
package errors
