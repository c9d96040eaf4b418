// Package media rewrites relative image references in rendered HTML so they
// resolve from the site root, and reports the folders those images live in.
package media

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/util/sets"
)

// imgSrc matches an <img> tag with a quoted src attribute.
// Groups: 1 everything up to the opening quote, 2 the URL, 3 the rest of the tag.
var imgSrc = regexp.MustCompile(`(?i)(<img\b[^>]*\ssrc\s*=\s*["'])([^"']*)(["'][^>]*>)`)

var externalPrefixes = []string{"http://", "https://", "//", "data:", "mailto:", "#"}

// Result is the outcome of rewriting one HTML fragment.
type Result struct {
	HTML string
	// Folders holds the content-root-relative folders, slash separated, that
	// contain at least one rewritten image.
	Folders sets.Set[string]
	// Missing lists the resolved paths of local images that do not exist.
	Missing []string
}

// Rewrite resolves every local image src in html against the folder of
// filePath. References to existing files are replaced by their path starting
// at the first contentRoot segment. Anything else is left untouched.
func Rewrite(html, filePath, contentRoot string, logger *slog.Logger) Result {
	res := Result{HTML: html, Folders: sets.New[string]()}
	root := normalizeRoot(contentRoot)
	if html == "" || root == "" {
		return res
	}
	if logger == nil {
		logger = slog.Default()
	}
	docDir := filepath.Dir(filePath)

	res.HTML = imgSrc.ReplaceAllStringFunc(html, func(tag string) string {
		m := imgSrc.FindStringSubmatch(tag)
		if m == nil {
			return tag
		}
		src := m[2]
		if IsExternal(src) {
			return tag
		}

		abs, err := resolve(docDir, src)
		if err != nil {
			logger.Warn("Cannot resolve image path", logfields.URL(src), logfields.File(filePath), logfields.Error(err))
			return tag
		}
		if info, statErr := os.Stat(abs); statErr != nil || info.IsDir() {
			res.Missing = append(res.Missing, abs)
			logger.Warn("Image file not found", logfields.URL(src), logfields.Path(abs), logfields.File(filePath))
			return tag
		}

		rel, ok := fromRoot(filepath.ToSlash(abs), root)
		if !ok {
			return tag
		}
		res.Folders.Add(path.Dir(rel))
		return m[1] + rel + m[3]
	})
	return res
}

// IsExternal reports whether src points outside the local content tree.
func IsExternal(src string) bool {
	if strings.TrimSpace(src) == "" {
		return true
	}
	lower := strings.ToLower(src)
	for _, p := range externalPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func resolve(docDir, src string) (string, error) {
	p := filepath.FromSlash(src)
	if !filepath.IsAbs(p) {
		p = filepath.Join(docDir, p)
	}
	return filepath.Abs(p)
}

func normalizeRoot(root string) string {
	root = filepath.ToSlash(strings.TrimSpace(root))
	root = strings.TrimPrefix(root, "./")
	return strings.Trim(root, "/")
}

// fromRoot slices p from the first occurrence of root that starts and ends
// on a path separator boundary.
func fromRoot(p, root string) (string, bool) {
	for offset := 0; offset < len(p); {
		i := strings.Index(p[offset:], root)
		if i < 0 {
			return "", false
		}
		start := offset + i
		end := start + len(root)
		if (start == 0 || p[start-1] == '/') && end < len(p) && p[end] == '/' {
			return p[start:], true
		}
		offset = start + 1
	}
	return "", false
}
