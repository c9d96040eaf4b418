package posts

import (
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/postbuilder/internal/logfields"
	"git.home.luguber.info/inful/postbuilder/internal/metrics"
	"git.home.luguber.info/inful/postbuilder/internal/plan"
)

// indexTags builds the tag taxonomy over posts in first-seen order, attaches
// each post's tags and, when enabled, appends one page per tag.
func (s *Service[F]) indexTags(posts []*Post[F], caps capabilities, pl *plan.Plan, logger *slog.Logger) []*Tag {
	opts := s.opts.Tags
	if !caps.tags {
		if opts.Enabled {
			s.opts.Recorder.AddDiagnostics(metrics.DiagnosticCapability, 1)
			logger.Warn("Tag pages are enabled but the front matter type does not expose tags; no tags were processed")
		}
		return nil
	}

	var tags []*Tag
	byName := make(map[string]*Tag)
	taken := make(map[string]string)
	for _, post := range posts {
		for _, name := range tagNames(&post.FrontMatter) {
			if name == "" {
				continue
			}
			if _, ok := byName[name]; ok {
				continue
			}
			tag := &Tag{Name: name, EncodedName: uniqueEncoding(opts.Encode(name), name, taken, logger)}
			byName[name] = tag
			tags = append(tags, tag)
		}
	}

	for _, post := range posts {
		seen := make(map[*Tag]bool)
		for _, name := range tagNames(&post.FrontMatter) {
			tag, ok := byName[name]
			if !ok || seen[tag] {
				continue
			}
			seen[tag] = true
			post.Tags = append(post.Tags, tag)
		}
	}

	if !opts.Enabled {
		return tags
	}
	for _, tag := range tags {
		route, output := pageLocation(opts.PageURL, tag.EncodedName)
		pl.AddPage(plan.PageToGenerate{Route: route, OutputPath: output})
	}
	return tags
}

// uniqueEncoding returns encoded, or encoded with the lowest free numeric
// suffix when another tag already uses it. An empty encoding becomes "tag".
func uniqueEncoding(encoded, name string, taken map[string]string, logger *slog.Logger) string {
	if encoded == "" {
		encoded = "tag"
	}
	candidate := encoded
	for n := 2; ; n++ {
		other, dup := taken[candidate]
		if !dup {
			break
		}
		if n == 2 {
			logger.Warn("Tag names share a page name; using a numbered page",
				logfields.Tag(name),
				slog.String("conflicts_with", other),
				logfields.Route(encoded))
		}
		candidate = encoded + "-" + strconv.Itoa(n)
	}
	taken[candidate] = name
	return candidate
}

func tagNames[F any](fm *F) []string {
	if t, ok := as[Tagger](fm); ok {
		return t.TagNames()
	}
	return nil
}
