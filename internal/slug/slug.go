// Package slug generates GitHub-compatible heading slugs: lowercase,
// punctuation stripped, spaces collapsed to hyphens, with stateful
// deduplication for repeated headings within a document.
package slug

import (
	"fmt"
	"strings"
)

// Slugifier generates unique slugs for a single document's headings. Create
// one per document; reuse across documents causes cross-document dedup
// suffixes, which is never what you want.
type Slugifier struct {
	counts map[string]int
}

// New creates a Slugifier with no prior slugs recorded.
func New() *Slugifier {
	return &Slugifier{counts: make(map[string]int)}
}

// Slugify converts heading into a unique, URL-safe slug. The first
// occurrence of a given base slug is returned unchanged; subsequent
// occurrences get a "-N" suffix (N starting at 1).
func (s *Slugifier) Slugify(heading string) string {
	base := makeBaseSlug(heading)
	return s.deduplicate(base)
}

// Base returns heading's URL-safe slug without recording it for
// deduplication, for callers that need to compose it into a larger slug
// (e.g. a nested heading's parent-prefixed slug) before deduplicating.
func (s *Slugifier) Base(heading string) string {
	return makeBaseSlug(heading)
}

// Dedup returns slug unchanged on its first occurrence and a "-N" suffixed
// variant (N starting at 1) on every occurrence after that. Unlike
// Slugify, slug is used as-is — it is not re-derived from raw heading text.
func (s *Slugifier) Dedup(slug string) string {
	return s.deduplicate(slug)
}

func makeBaseSlug(heading string) string {
	var b strings.Builder
	b.Grow(len(heading))
	prevHyphen := false
	for _, c := range heading {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
			prevHyphen = false
		case c >= 'A' && c <= 'Z':
			b.WriteRune(c - 'A' + 'a')
			prevHyphen = false
		case c == ' ' || c == '-':
			if !prevHyphen {
				b.WriteByte('-')
			}
			prevHyphen = true
		default:
			// punctuation and non-ASCII are dropped entirely
		}
	}

	result := strings.Trim(b.String(), "-")
	if result == "" {
		return "heading"
	}
	return result
}

func (s *Slugifier) deduplicate(base string) string {
	count := s.counts[base]
	s.counts[base] = count + 1
	if count == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, count)
}
