package posts

import (
	"io/fs"
	"log/slog"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/postbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
)

// discover returns every file below root whose name matches PostFilePattern,
// in lexical order. Entries that cannot be read are skipped.
func (s *Service[F]) discover(root string, logger *slog.Logger) ([]string, error) {
	if err := validatePattern(s.opts.PostFilePattern); err != nil {
		return nil, err
	}
	if err := checkRoot(root); err != nil {
		return nil, err
	}

	var files []string
	skipped := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			skipped++
			logger.Debug("Skipping inaccessible entry", logfields.Path(p), logfields.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(s.opts.PostFilePattern, d.Name()); ok {
			files = append(files, p)
		}
		return nil
	})
	s.opts.Recorder.AddDiagnostics(metrics.DiagnosticUnreadable, skipped)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot enumerate content root").
			Fatal().
			WithContext("path", root).
			Build()
	}
	return files, nil
}
