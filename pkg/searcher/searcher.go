// Package searcher runs the query-time pipeline: compile a query string,
// retrieve candidates, normalize scores across trees, aggregate matching
// sections back up their document hierarchy, cut off the long tail, and
// assemble match details at the caller's requested verbosity.
package searcher

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Aman-CERP/ra/internal/analyzer"
	"github.com/Aman-CERP/ra/internal/compiler"
	"github.com/Aman-CERP/ra/internal/config"
	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/queryast"
	"github.com/Aman-CERP/ra/internal/queryerr"
	"github.com/Aman-CERP/ra/internal/ranges"
	"github.com/Aman-CERP/ra/internal/schema"
	"github.com/Aman-CERP/ra/internal/store"
)

// Searcher runs searches against one index under one configuration.
type Searcher struct {
	idx *store.Index
	cfg *config.Config
	az  *analyzer.Analyzer
}

// New builds a Searcher over idx, using cfg for tree/local-boost/fuzzy
// settings and az for query-term stemming.
func New(idx *store.Index, cfg *config.Config, az *analyzer.Analyzer) *Searcher {
	return &Searcher{idx: idx, cfg: cfg, az: az}
}

// candidate is the pipeline's working unit: a stored document plus its
// running score, as it moves through normalization, aggregation, and cutoff.
type candidate struct {
	doc         schema.ChunkDocument
	score       float64
	explanation string // pretty-printed JSON, only populated at verbosity>=2
}

// Result is one ranked hit returned to the caller.
type Result struct {
	ID           string
	DocID        string
	ParentID     string
	Hierarchy    []string
	Depth        int
	Position     int
	ByteStart    int
	ByteEnd      int
	SiblingCount int
	Tree         string
	Path         string
	Title        string
	Body         string
	Score        float64

	Snippet          string
	MatchRanges      []ranges.Range
	TitleMatchRanges []ranges.Range
	PathMatchRanges  []ranges.Range
	MatchDetails     *MatchDetails
}

// FieldMatch records how often each matched term appeared in one field.
type FieldMatch struct {
	TermFrequencies map[string]int
}

// MatchDetails is the verbosity>=2 explanation of why a result scored the
// way it did.
type MatchDetails struct {
	OriginalTerms    []string
	StemmedTerms     []string
	TermMappings     map[string][]string
	FieldMatches     map[string]FieldMatch
	BaseScore        float64
	LocalBoost       float64
	ScoreExplanation string
}

// ElbowKind classifies why Phase 4's cutoff landed where it did.
type ElbowKind string

const (
	ElbowEmpty   ElbowKind = "empty"
	ElbowNoCliff ElbowKind = "no_cliff"
	ElbowCut     ElbowKind = "cut"
)

// ElbowReason explains Phase 4's decision.
type ElbowReason struct {
	Kind  ElbowKind
	Index int
	Ratio float64
}

// PipelineStats reports how many candidates survived each phase, for
// --explain-style diagnostics.
type PipelineStats struct {
	RawCandidates   int
	PostAggregation int
	PostElbow       int
	Final           int
	Elbow           ElbowReason
}

// Search runs the full five-phase pipeline over queryStr and returns ranked
// results plus per-phase diagnostics. An empty (whitespace-only) query
// string returns an empty result set, not an error.
func (s *Searcher) Search(queryStr string, params SearchParams) ([]Result, PipelineStats, error) {
	expr, err := queryast.Parse(queryStr)
	if err != nil {
		return nil, PipelineStats{}, wrapQueryError(err, queryStr)
	}
	if expr == nil {
		return nil, PipelineStats{Elbow: ElbowReason{Kind: ElbowEmpty}}, nil
	}

	comp := compiler.New(s.idx.Bleve(), s.az, params.FuzzyDistance)
	compiled, err := comp.Compile(expr)
	if err != nil {
		return nil, PipelineStats{}, wrapQueryError(err, queryStr)
	}
	if compiled == nil {
		return nil, PipelineStats{Elbow: ElbowReason{Kind: ElbowEmpty}}, nil
	}

	finalQuery := s.applyTreeFilter(compiled, params.Trees)

	candidates, err := s.retrieveCandidates(finalQuery, params)
	if err != nil {
		return nil, PipelineStats{}, err
	}

	stats := PipelineStats{RawCandidates: len(candidates)}
	if len(candidates) == 0 {
		stats.Elbow = ElbowReason{Kind: ElbowEmpty}
		return nil, stats, nil
	}

	s.applyLocalBoost(candidates)
	candidates = normalizeAcrossTrees(candidates)

	if !params.DisableAggregation && len(candidates) > 1 {
		aggregated, err := s.aggregate(candidates, params.effectiveAggregationThreshold())
		if err != nil {
			return nil, PipelineStats{}, err
		}
		candidates = aggregated
	}
	sortByScoreDesc(candidates)
	if len(candidates) > params.effectiveAggregationPoolSize() {
		candidates = candidates[:params.effectiveAggregationPoolSize()]
	}
	stats.PostAggregation = len(candidates)

	kept, reason := applyElbow(candidates, params.effectiveCutoffRatio())
	stats.Elbow = reason
	stats.PostElbow = len(kept)

	if limit := params.effectiveLimit(); len(kept) > limit {
		kept = kept[:limit]
	}
	stats.Final = len(kept)

	results := make([]Result, 0, len(kept))
	for _, c := range kept {
		results = append(results, s.buildResult(c, expr, params))
	}
	return results, stats, nil
}

// wrapQueryError attaches the original query string to a lex/parse/compile
// failure, choosing the matching QueryError constructor by the underlying
// error's code so the stage that actually failed is preserved.
func wrapQueryError(err error, queryStr string) error {
	re, ok := err.(*raerrors.RaError)
	if !ok {
		return queryerr.Parse(err.Error(), 0).WithQuery(queryStr).AsRaError()
	}

	var qe *queryerr.QueryError
	switch re.Code {
	case raerrors.ErrCodeQueryLex:
		pos, _ := strconv.Atoi(re.Details["position"])
		qe = queryerr.Lex(re.Message, pos)
	case raerrors.ErrCodeQueryCompile:
		qe = queryerr.Compile(re.Message)
	default:
		qe = queryerr.Parse(re.Message, 0)
	}
	return qe.WithQuery(queryStr).AsRaError()
}

// applyTreeFilter wraps compiled in an AND with a disjunction of per-tree
// term queries, when trees is non-empty.
func (s *Searcher) applyTreeFilter(compiled query.Query, trees []string) query.Query {
	if len(trees) == 0 {
		return compiled
	}
	bq := bleve.NewBooleanQuery()
	bq.AddMust(compiled)
	bq.AddMust(s.treeFilterQuery(trees))
	return bq
}

// retrieveCandidates is Phase 1: run finalQuery and collect up to
// candidate_limit hits ordered by score descending (bleve's default order).
func (s *Searcher) retrieveCandidates(finalQuery query.Query, params SearchParams) ([]candidate, error) {
	req := bleve.NewSearchRequestOptions(finalQuery, params.effectiveCandidateLimit(), 0, false)
	req.Fields = []string{"*"}
	// Locations and score explanations are expensive to compute, so they're
	// only requested when a caller actually asked for full match details.
	req.IncludeLocations = params.Verbosity >= 2
	req.Explain = params.Verbosity >= 2

	result, err := s.idx.Bleve().Search(req)
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "search request failed", err)
	}

	out := make([]candidate, 0, len(result.Hits))
	for _, hit := range result.Hits {
		doc := documentFromHitFields(hit.ID, hit.Fields)
		c := candidate{doc: doc, score: hit.Score}
		if hit.Expl != nil {
			if pretty, err := json.MarshalIndent(hit.Expl, "", "  "); err == nil {
				c.explanation = string(pretty)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// applyLocalBoost multiplies each non-global-tree candidate's score by the
// configured local-boost factor, before cross-tree normalization.
func (s *Searcher) applyLocalBoost(candidates []candidate) {
	for i, c := range candidates {
		tree, ok := s.cfg.TreeByName(c.doc.Tree)
		if ok && !tree.IsGlobal {
			candidates[i].score *= s.cfg.LocalBoost
		}
	}
}

// normalizeAcrossTrees is Phase 2: when candidates span two or more trees,
// rescale each candidate's score by its tree's maximum score so no tree's
// raw scoring scale can dominate purely by magnitude. A single-tree result
// set passes through unchanged.
func normalizeAcrossTrees(candidates []candidate) []candidate {
	maxByTree := make(map[string]float64)
	for _, c := range candidates {
		if c.score > maxByTree[c.doc.Tree] {
			maxByTree[c.doc.Tree] = c.score
		}
	}
	if len(maxByTree) < 2 {
		return candidates
	}

	out := make([]candidate, len(candidates))
	for i, c := range candidates {
		m := maxByTree[c.doc.Tree]
		if m <= 0 {
			m = 1.0
		}
		out[i] = candidate{doc: c.doc, score: c.score / m}
	}
	sortByScoreDesc(out)
	return out
}

func sortByScoreDesc(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
}

// applyElbow is Phase 4: walk sorted-descending candidates, cutting at the
// first index where the next score drops below ratio of the current one.
func applyElbow(candidates []candidate, ratio float64) ([]candidate, ElbowReason) {
	if len(candidates) == 0 {
		return candidates, ElbowReason{Kind: ElbowEmpty}
	}
	for i := 0; i < len(candidates)-1; i++ {
		if candidates[i].score <= 0 {
			continue
		}
		r := candidates[i+1].score / candidates[i].score
		if r < ratio {
			return candidates[:i+1], ElbowReason{Kind: ElbowCut, Index: i, Ratio: r}
		}
	}
	return candidates, ElbowReason{Kind: ElbowNoCliff}
}

// GetByID passes through to the store's direct lookup.
func (s *Searcher) GetByID(id string) (schema.ChunkDocument, bool, error) {
	return s.idx.GetByID(id)
}

// ListAll passes through to the store's full listing.
func (s *Searcher) ListAll() ([]schema.ChunkDocument, error) {
	return s.idx.ListAll()
}

// documentFromHitFields reconstructs a ChunkDocument from a bleve hit's
// stored field map, mirroring store.documentFromFields (unexported there).
func documentFromHitFields(id string, fields map[string]interface{}) schema.ChunkDocument {
	str := func(key string) string {
		v, _ := fields[key].(string)
		return v
	}
	num := func(key string) int {
		if v, ok := fields[key].(float64); ok {
			return int(v)
		}
		return 0
	}

	return schema.ChunkDocument{
		Type:           schema.DocType,
		ID:             id,
		Title:          str(schema.FieldTitle),
		Tags:           str(schema.FieldTags),
		Path:           str(schema.FieldPath),
		PathComponents: str(schema.FieldPathComponents),
		Tree:           str(schema.FieldTree),
		Body:           str(schema.FieldBody),
		DocID:          str(schema.FieldDocID),
		ParentID:       str(schema.FieldParentID),
		HierarchyRaw:   str(schema.FieldHierarchy),
		Depth:          num(schema.FieldDepth),
		Position:       num(schema.FieldPosition),
		ByteStart:      num(schema.FieldByteStart),
		ByteEnd:        num(schema.FieldByteEnd),
		SiblingCount:   num(schema.FieldSiblingCount),
	}
}

