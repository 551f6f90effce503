// Package ranges merges and extracts byte-offset spans used to highlight
// matched terms back in source text.
package ranges

import (
	"sort"

	"github.com/Aman-CERP/ra/internal/analyzer"
)

// Range is a half-open byte span [Start, End) into some source text.
type Range struct {
	Start, End int
}

// tokenizer is the subset of *analyzer.Analyzer needed to recover
// match spans, narrowed for testability.
type tokenizer interface {
	AnalyzeWithOffsets(text string) []analyzer.Token
}

// MergeRanges combines a and b, merging overlapping or adjacent ranges.
// The result is sorted by start position with no overlaps.
func MergeRanges(a, b []Range) []Range {
	all := make([]Range, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	if len(all) == 0 {
		return all
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	merged := make([]Range, 0, len(all))
	current := all[0]
	for _, r := range all[1:] {
		if r.Start <= current.End {
			if r.End > current.End {
				current.End = r.End
			}
		} else {
			merged = append(merged, current)
			current = r
		}
	}
	merged = append(merged, current)
	return merged
}

// ExtractMatchRanges re-tokenizes body with the analyzer and returns the
// byte spans of every token whose stemmed text is in matchedTerms, merged
// and sorted. Offsets are relative to body, not the stemmed token text.
func ExtractMatchRanges(az tokenizer, body string, matchedTerms map[string]struct{}) []Range {
	if len(matchedTerms) == 0 || body == "" {
		return nil
	}

	var spans []Range
	for _, tok := range az.AnalyzeWithOffsets(body) {
		if _, ok := matchedTerms[tok.Text]; ok {
			spans = append(spans, Range{Start: tok.Start, End: tok.End})
		}
	}
	return MergeRanges(spans, nil)
}
