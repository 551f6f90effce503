package searcher

import (
	"strings"

	"github.com/Aman-CERP/ra/internal/analyzer"
	"github.com/Aman-CERP/ra/internal/fuzzy"
	"github.com/Aman-CERP/ra/internal/queryast"
	"github.com/Aman-CERP/ra/internal/ranges"
	"github.com/Aman-CERP/ra/internal/schema"
)

// snippetWindow is the target excerpt length around a result's densest
// match cluster.
const snippetWindow = 200

// buildResult assembles one ranked Result, adding highlighting and match
// details according to params.Verbosity.
func (s *Searcher) buildResult(c candidate, expr queryast.Expr, params SearchParams) Result {
	doc := c.doc
	r := Result{
		ID:           doc.ID,
		DocID:        doc.DocID,
		ParentID:     doc.ParentID,
		Hierarchy:    doc.Hierarchy(),
		Depth:        doc.Depth,
		Position:     doc.Position,
		ByteStart:    doc.ByteStart,
		ByteEnd:      doc.ByteEnd,
		SiblingCount: doc.SiblingCount,
		Tree:         doc.Tree,
		Path:         doc.Path,
		Title:        doc.Title,
		Body:         doc.Body,
		Score:        c.score,
	}

	if params.Verbosity < 1 {
		return r
	}

	originalTerms := collectTerms(expr)
	stemmedTerms := make([]string, 0, len(originalTerms))
	matched := make(map[string]struct{}, len(originalTerms))
	for _, t := range originalTerms {
		for _, stem := range s.az.Analyze(t) {
			stemmedTerms = append(stemmedTerms, stem)
			matched[stem] = struct{}{}
		}
	}

	r.MatchRanges = ranges.ExtractMatchRanges(s.az, doc.Body, matched)
	r.TitleMatchRanges = ranges.ExtractMatchRanges(s.az, doc.Title, matched)
	r.PathMatchRanges = ranges.ExtractMatchRanges(s.az, doc.Path, matched)
	r.Snippet = buildSnippet(doc.Body, r.MatchRanges)

	if params.Verbosity < 2 {
		return r
	}

	details := &MatchDetails{
		OriginalTerms: originalTerms,
		StemmedTerms:  stemmedTerms,
		BaseScore:     c.score,
		LocalBoost:    s.cfg.LocalBoost,
		FieldMatches: map[string]FieldMatch{
			schema.FieldBody:  fieldMatch(s.az, doc.Body, matched),
			schema.FieldTitle: fieldMatch(s.az, doc.Title, matched),
			schema.FieldPath:  fieldMatch(s.az, doc.Path, matched),
		},
		ScoreExplanation: c.explanation,
	}
	if params.FuzzyDistance > 0 {
		if mappings, err := fuzzy.FindTermMappings(s.idx.Bleve(), schema.FieldBody, originalTerms, params.FuzzyDistance); err == nil {
			details.TermMappings = mappings
		}
	}
	r.MatchDetails = details

	return r
}

// collectTerms walks a parsed expression tree and returns every original
// (un-stemmed) term and phrase word it contains, in the order encountered.
func collectTerms(expr queryast.Expr) []string {
	var out []string
	var walk func(e queryast.Expr)
	walk = func(e queryast.Expr) {
		switch v := e.(type) {
		case queryast.Term:
			out = append(out, v.Text)
		case queryast.Phrase:
			out = append(out, v.Tokens...)
		case queryast.Not:
			walk(v.Expr)
		case queryast.Field:
			walk(v.Expr)
		case queryast.Boost:
			walk(v.Expr)
		case queryast.And:
			for _, c := range v.Exprs {
				walk(c)
			}
		case queryast.Or:
			for _, c := range v.Exprs {
				walk(c)
			}
		}
	}
	walk(expr)
	return out
}

// fieldMatch counts how many times each matched stemmed term appears in
// text, for verbose per-field match reporting.
func fieldMatch(az *analyzer.Analyzer, text string, matched map[string]struct{}) FieldMatch {
	freq := make(map[string]int)
	for _, tok := range az.AnalyzeWithOffsets(text) {
		if _, ok := matched[tok.Text]; ok {
			freq[tok.Text]++
		}
	}
	return FieldMatch{TermFrequencies: freq}
}

// buildSnippet excerpts roughly snippetWindow characters of body around the
// densest cluster of match ranges (the range with the most neighbors within
// one window's distance), falling back to the start of body when there are
// no matches to center on.
func buildSnippet(body string, matches []ranges.Range) string {
	if body == "" {
		return ""
	}
	if len(matches) == 0 {
		return excerpt(body, 0, snippetWindow)
	}

	bestIdx, bestCount := 0, -1
	for i, m := range matches {
		count := 0
		for _, other := range matches {
			if abs(other.Start-m.Start) <= snippetWindow {
				count++
			}
		}
		if count > bestCount {
			bestCount, bestIdx = count, i
		}
	}

	center := matches[bestIdx].Start
	start := center - snippetWindow/2
	return excerpt(body, start, start+snippetWindow)
}

// excerpt returns body[start:end], clamped to valid bounds and widened
// outward to the nearest rune boundary so multi-byte characters aren't cut
// in half.
func excerpt(body string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(body) {
		end = len(body)
	}
	if start >= end {
		return ""
	}
	for start > 0 && !isRuneStart(body[start]) {
		start--
	}
	for end < len(body) && !isRuneStart(body[end]) {
		end++
	}
	return strings.TrimSpace(body[start:end])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
