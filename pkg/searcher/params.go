package searcher

// Tunable defaults for the five-phase search pipeline.
const (
	// DefaultLimit is the final result count after aggregation and elbow.
	DefaultLimit = 10
	// DefaultAggregationPoolSize bounds how many candidates survive Phase 3
	// before elbow cutoff runs.
	DefaultAggregationPoolSize = 500
	// CandidateLimitMultiplier derives Phase 1's candidate_limit from limit
	// when the caller doesn't set one explicitly.
	CandidateLimitMultiplier = 50
	// DefaultCutoffRatio is Phase 4's score-ratio elbow threshold.
	DefaultCutoffRatio = 0.5
	// DefaultAggregationThreshold is Phase 3's sibling-presence ratio.
	DefaultAggregationThreshold = 0.1
)

// SearchParams controls every phase of Search.
type SearchParams struct {
	// CandidateLimit is Phase 1's raw hit cap. 0 derives it as
	// Limit * CandidateLimitMultiplier.
	CandidateLimit int
	// CutoffRatio is Phase 4's elbow threshold.
	CutoffRatio float64
	// AggregationPoolSize bounds Phase 3's output before elbow cutoff.
	AggregationPoolSize int
	// AggregationThreshold is Phase 3's sibling-presence ratio.
	AggregationThreshold float64
	// DisableAggregation skips Phase 3 entirely.
	DisableAggregation bool
	// Limit is Phase 5's final truncation.
	Limit int
	// Trees restricts candidates to these tree names. Empty searches all.
	Trees []string
	// FuzzyDistance is the Levenshtein distance (0, 1, or 2) applied to bare
	// terms. 0 disables fuzzy expansion.
	FuzzyDistance int
	// Verbosity controls match-detail assembly: 0 none, 1 snippet, 2 full
	// MatchDetails.
	Verbosity int
}

// DefaultSearchParams returns the spec-documented defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		CutoffRatio:          DefaultCutoffRatio,
		AggregationPoolSize:  DefaultAggregationPoolSize,
		AggregationThreshold: DefaultAggregationThreshold,
		Limit:                DefaultLimit,
	}
}

func (p SearchParams) effectiveLimit() int {
	if p.Limit > 0 {
		return p.Limit
	}
	return DefaultLimit
}

func (p SearchParams) effectiveCandidateLimit() int {
	if p.CandidateLimit > 0 {
		return p.CandidateLimit
	}
	return p.effectiveLimit() * CandidateLimitMultiplier
}

func (p SearchParams) effectiveAggregationPoolSize() int {
	if p.AggregationPoolSize > 0 {
		return p.AggregationPoolSize
	}
	return DefaultAggregationPoolSize
}

func (p SearchParams) effectiveCutoffRatio() float64 {
	if p.CutoffRatio > 0 {
		return p.CutoffRatio
	}
	return DefaultCutoffRatio
}

func (p SearchParams) effectiveAggregationThreshold() float64 {
	if p.AggregationThreshold > 0 {
		return p.AggregationThreshold
	}
	return DefaultAggregationThreshold
}
