package searcher

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/schema"
)

// SignalSource is anything that can contribute search terms to
// SearchContext: a snippet of surrounding code, a prior query, a set of
// related identifiers — any external signal expressed as a term set.
type SignalSource interface {
	Terms() []string
}

// NumDocs returns the total number of indexed chunks, optionally restricted
// to the given trees. An empty trees list counts the whole index.
func (s *Searcher) NumDocs(trees []string) (uint64, error) {
	if len(trees) == 0 {
		return s.idx.DocCount()
	}
	return s.countMatches(s.treeFilterQuery(trees))
}

// TermIDF computes the inverse document frequency of term (stemmed the same
// way indexing stems the body field): ln((N+1)/(df+1))+1, where N is the
// indexed record count (optionally restricted to trees) and df is how many
// of those records contain the stemmed term in their body. found is false
// when the term isn't present in the index at all (df=0).
func (s *Searcher) TermIDF(term string, trees []string) (idf float64, found bool, err error) {
	stemmed := s.az.Analyze(term)
	if len(stemmed) == 0 {
		return 0, false, nil
	}

	tq := bleve.NewTermQuery(stemmed[0])
	tq.SetField(schema.FieldBody)

	var q query.Query = tq
	if len(trees) > 0 {
		bq := bleve.NewBooleanQuery()
		bq.AddMust(tq)
		bq.AddMust(s.treeFilterQuery(trees))
		q = bq
	}

	df, err := s.countMatches(q)
	if err != nil {
		return 0, false, err
	}
	if df == 0 {
		return 0, false, nil
	}

	n, err := s.NumDocs(trees)
	if err != nil {
		return 0, false, err
	}

	idf = math.Log((float64(n)+1)/(float64(df)+1)) + 1
	return idf, true, nil
}

// SearchContext runs the standard search pipeline over the deduplicated
// union of every signal's terms, for callers that want to find chunks
// related to some external context (a file being edited, a prior result)
// rather than typing a query themselves.
func (s *Searcher) SearchContext(signals []SignalSource, limit int, trees []string) ([]Result, PipelineStats, error) {
	seen := make(map[string]struct{})
	var terms []string
	for _, sig := range signals {
		for _, t := range sig.Terms() {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, PipelineStats{Elbow: ElbowReason{Kind: ElbowEmpty}}, nil
	}

	sort.Strings(terms) // deterministic query string regardless of signal order
	queryStr := strings.Join(quoteTerms(terms), " OR ")

	params := DefaultSearchParams()
	params.Limit = limit
	params.Trees = trees
	return s.Search(queryStr, params)
}

// quoteTerms wraps each term in the query language's phrase quotes. Terms
// are signal-provided words, not user-typed query syntax, so any embedded
// quote is stripped rather than escaped.
func quoteTerms(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = fmt.Sprintf("%q", strings.ReplaceAll(t, `"`, ""))
	}
	return out
}

// treeFilterQuery builds a disjunction of exact tree-name matches.
func (s *Searcher) treeFilterQuery(trees []string) query.Query {
	qs := make([]query.Query, 0, len(trees))
	for _, t := range trees {
		tq := bleve.NewTermQuery(t)
		tq.SetField(schema.FieldTree)
		qs = append(qs, tq)
	}
	if len(qs) == 1 {
		return qs[0]
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// countMatches returns how many documents match q without fetching them.
func (s *Searcher) countMatches(q query.Query) (uint64, error) {
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	result, err := s.idx.Bleve().Search(req)
	if err != nil {
		return 0, raerrors.New(raerrors.ErrCodeInternal, "failed to count matches", err)
	}
	return result.Total, nil
}
