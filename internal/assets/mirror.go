// Package assets mirrors media and static folders into the output tree.
package assets

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/util/sets"
)

// Mirror copies source to target. A file is copied to the target path; a
// directory is copied recursively, creating directories and overwriting
// files. ignored lists paths relative to target that are not created;
// an ignored directory is skipped with everything below it.
//
// A missing source is logged and skipped.
func Mirror(source, target string, ignored []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(source)
	if err != nil {
		logger.Error("Source path does not exist", logfields.Path(source), logfields.Error(err))
		return nil
	}

	if !info.IsDir() {
		if target == "" {
			logger.Error("Target directory is empty for file", logfields.Path(source))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return copyError(err, source, target)
		}
		if err := copyFile(source, target, info.Mode()); err != nil {
			return copyError(err, source, target)
		}
		return nil
	}

	skip := sets.New[string]()
	for _, p := range ignored {
		skip.Add(filepath.Clean(filepath.FromSlash(p)))
	}

	copied := 0
	err = filepath.WalkDir(source, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, p)
		if err != nil {
			return err
		}
		if rel != "." && skip.Has(rel) {
			logger.Debug("Skipping ignored path", logfields.Path(p))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dst := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o750)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		copied++
		return copyFile(p, dst, fi.Mode())
	})
	if err != nil {
		return copyError(err, source, target)
	}
	logger.Debug("Mirrored directory", logfields.Path(source), slog.String("target", target), logfields.Count(copied))
	return nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	// #nosec G304 -- src comes from walking a configured source tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- dst is derived from the configured output directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func copyError(err error, source, target string) error {
	return ferrors.WrapError(fmt.Errorf("mirror %s to %s: %w", source, target, err), ferrors.CategoryFileSystem, "cannot mirror content").
		Fatal().
		WithContext("source", source).
		WithContext("target", target).
		Build()
}
