package searcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ra/internal/analyzer"
	"github.com/Aman-CERP/ra/internal/chunk"
	"github.com/Aman-CERP/ra/internal/config"
	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/schema"
	"github.com/Aman-CERP/ra/internal/store"
)

func newTestSearcher(t *testing.T, cfg *config.Config) (*Searcher, *store.Index) {
	t.Helper()
	idx, err := store.Open("", "english")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	az, err := analyzer.New("english")
	require.NoError(t, err)

	if cfg == nil {
		cfg = config.NewConfig()
	}
	return New(idx, cfg, az), idx
}

func indexDoc(t *testing.T, idx *store.Index, tree, path, title, body string) []chunk.Chunk {
	t.Helper()
	chunks := chunk.Build(body, tree, path, title).Extract()
	require.NoError(t, idx.AddChunks(tree, path, time.Unix(1000, 0), nil, chunks))
	return chunks
}

func TestSearchEmptyQueryReturnsNoResultsWithoutError(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nHello world.\n")

	results, stats, err := s.Search("   ", DefaultSearchParams())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, ElbowEmpty, stats.Elbow.Kind)
}

func TestSearchFindsIndexedTerm(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nHello rust programmers.\n")

	results, stats, err := s.Search("rust", DefaultSearchParams())
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 1, stats.Final)
	assert.Contains(t, results[0].Body, "rust")
}

func TestSearchUnknownFieldReturnsCompileError(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nHello world.\n")

	_, _, err := s.Search("bogus:term", DefaultSearchParams())
	require.Error(t, err)
	assert.Equal(t, raerrors.ErrCodeQueryCompile, raerrors.GetCode(err))
}

func TestSearchRestrictsToRequestedTrees(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "a.md", "A", "# A\nshared term alpha.\n")
	indexDoc(t, idx, "notes", "b.md", "B", "# B\nshared term beta.\n")

	params := DefaultSearchParams()
	params.Trees = []string{"notes"}
	results, _, err := s.Search("shared", params)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "notes", r.Tree)
	}
}

func TestSearchVerbosityAssemblesMatchDetails(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nHello rust programmers.\n")

	params := DefaultSearchParams()
	params.Verbosity = 2
	results, _, err := s.Search("rust", params)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.NotNil(t, results[0].MatchDetails)
	assert.Contains(t, results[0].MatchDetails.StemmedTerms, "rust")
	assert.NotEmpty(t, results[0].MatchRanges)
}

func TestNormalizeAcrossTreesSingleTreeUnchanged(t *testing.T) {
	candidates := []candidate{
		{doc: schema.ChunkDocument{Tree: "docs"}, score: 10},
		{doc: schema.ChunkDocument{Tree: "docs"}, score: 5},
	}
	out := normalizeAcrossTrees(candidates)
	assert.Equal(t, 10.0, out[0].score)
	assert.Equal(t, 5.0, out[1].score)
}

// TestNormalizeAcrossTreesRescalesByTreeMax mirrors the worked example:
// candidates [A:4500, A:3000, B:800, B:600] across two trees normalize to
// [A:1.0, B:1.0, B:0.75, A:0.667].
func TestNormalizeAcrossTreesRescalesByTreeMax(t *testing.T) {
	candidates := []candidate{
		{doc: schema.ChunkDocument{Tree: "A"}, score: 4500},
		{doc: schema.ChunkDocument{Tree: "A"}, score: 3000},
		{doc: schema.ChunkDocument{Tree: "B"}, score: 800},
		{doc: schema.ChunkDocument{Tree: "B"}, score: 600},
	}
	out := normalizeAcrossTrees(candidates)
	require.Len(t, out, 4)
	assert.Equal(t, "A", out[0].doc.Tree)
	assert.InDelta(t, 1.0, out[0].score, 0.001)
	assert.Equal(t, "B", out[1].doc.Tree)
	assert.InDelta(t, 1.0, out[1].score, 0.001)
	assert.Equal(t, "B", out[2].doc.Tree)
	assert.InDelta(t, 0.75, out[2].score, 0.001)
	assert.Equal(t, "A", out[3].doc.Tree)
	assert.InDelta(t, 0.667, out[3].score, 0.001)
}

func TestNormalizeAcrossTreesHandlesZeroScores(t *testing.T) {
	candidates := []candidate{
		{doc: schema.ChunkDocument{Tree: "A"}, score: 0},
		{doc: schema.ChunkDocument{Tree: "B"}, score: 0},
	}
	out := normalizeAcrossTrees(candidates)
	for _, c := range out {
		assert.Equal(t, 0.0, c.score)
	}
}

func TestNormalizeAcrossTreesEmptyCandidates(t *testing.T) {
	out := normalizeAcrossTrees(nil)
	assert.Empty(t, out)
}

// TestApplyElbowCutsAtCliff mirrors the worked example: sorted scores
// [10, 9, 8, 2, 1] with cutoff_ratio=0.5 cut after index 2 (ratio 2/8=0.25).
func TestApplyElbowCutsAtCliff(t *testing.T) {
	candidates := []candidate{
		{score: 10}, {score: 9}, {score: 8}, {score: 2}, {score: 1},
	}
	kept, reason := applyElbow(candidates, 0.5)
	assert.Len(t, kept, 3)
	assert.Equal(t, ElbowCut, reason.Kind)
	assert.Equal(t, 2, reason.Index)
	assert.InDelta(t, 0.25, reason.Ratio, 0.001)
}

func TestApplyElbowNoCliffKeepsAll(t *testing.T) {
	candidates := []candidate{
		{score: 10}, {score: 9.5}, {score: 9}, {score: 8.5},
	}
	kept, reason := applyElbow(candidates, 0.5)
	assert.Len(t, kept, 4)
	assert.Equal(t, ElbowNoCliff, reason.Kind)
}

func TestApplyElbowEmptyInput(t *testing.T) {
	kept, reason := applyElbow(nil, 0.5)
	assert.Empty(t, kept)
	assert.Equal(t, ElbowEmpty, reason.Kind)
}

func TestApplyLocalBoostSkipsGlobalTrees(t *testing.T) {
	cfg := config.NewConfig()
	cfg.LocalBoost = 2.0
	cfg.Trees = []config.Tree{
		{Name: "docs", IsGlobal: false},
		{Name: "shared", IsGlobal: true},
	}
	s, _ := newTestSearcher(t, cfg)

	candidates := []candidate{
		{doc: schema.ChunkDocument{Tree: "docs"}, score: 10},
		{doc: schema.ChunkDocument{Tree: "shared"}, score: 10},
	}
	s.applyLocalBoost(candidates)
	assert.Equal(t, 20.0, candidates[0].score)
	assert.Equal(t, 10.0, candidates[1].score)
}

func TestAggregateCollapsesWholeSectionWhenEverySiblingMatches(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	// Two top-level sections so the document root has more than one child:
	// Intro's own children (Alpha, Beta) fully match and collapse into
	// Intro, while sibling section Other doesn't match at all, keeping the
	// root itself from also collapsing.
	body := "# Intro\nintro preamble.\n\n## Alpha\nalpha body.\n\n## Beta\nbeta body.\n\n# Other\nother body.\n"
	chunks := indexDoc(t, idx, "docs", "guide.md", "Guide", body)
	require.Len(t, chunks, 5)
	root, intro, alpha, beta := chunks[0], chunks[1], chunks[2], chunks[3]
	require.Equal(t, "Intro", intro.Title)
	require.Equal(t, "Alpha", alpha.Title)
	require.Equal(t, "Beta", beta.Title)

	candidates := []candidate{
		{doc: schema.ChunkDocument{ID: alpha.ID.String(), DocID: alpha.ID.Doc.String()}, score: 5},
		{doc: schema.ChunkDocument{ID: beta.ID.String(), DocID: beta.ID.Doc.String()}, score: 3},
	}
	out, err := s.aggregate(candidates, 0.5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, intro.ID.String(), out[0].doc.ID)
	assert.NotEqual(t, root.ID.String(), out[0].doc.ID)
	assert.Equal(t, 5.0, out[0].score)
}

func TestAggregatePassesThroughWhenBelowThreshold(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	body := "# Intro\nintro preamble.\n\n## Alpha\nalpha body.\n\n## Beta\nbeta body.\n\n## Gamma\ngamma body.\n\n# Other\nother body.\n"
	chunks := indexDoc(t, idx, "docs", "guide.md", "Guide", body)
	require.Len(t, chunks, 6)
	alpha := chunks[2]
	require.Equal(t, "Alpha", alpha.Title)

	candidates := []candidate{
		{doc: schema.ChunkDocument{ID: alpha.ID.String(), DocID: alpha.ID.Doc.String()}, score: 5},
	}
	out, err := s.aggregate(candidates, 0.5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, alpha.ID.String(), out[0].doc.ID)
}

func TestAggregateRootCollapsesOnlyWhenWholeDocumentMatches(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	body := "# A\nbody a.\n\n# B\nbody b.\n\n# C\nbody c.\n"
	chunks := indexDoc(t, idx, "docs", "guide.md", "Guide", body)
	require.Len(t, chunks, 4)
	root, a, b, c := chunks[0], chunks[1], chunks[2], chunks[3]

	candidates := []candidate{
		{doc: schema.ChunkDocument{ID: a.ID.String(), DocID: a.ID.Doc.String()}, score: 5},
		{doc: schema.ChunkDocument{ID: b.ID.String(), DocID: b.ID.Doc.String()}, score: 4},
		{doc: schema.ChunkDocument{ID: c.ID.String(), DocID: c.ID.Doc.String()}, score: 3},
	}
	out, err := s.aggregate(candidates, 0.5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, root.ID.String(), out[0].doc.ID)
	assert.Equal(t, 5.0, out[0].score)
}

func TestAggregateRootDoesNotCollapseOnPartialDocumentMatch(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	// Three sibling sections, only one matching: the children-present ratio
	// (1/3) clears the default aggregation threshold (0.1), but the root
	// must still only emit the matching section, not the whole document.
	body := "# A\nbody a.\n\n# B\nbody b.\n\n# C\nbody c.\n"
	chunks := indexDoc(t, idx, "docs", "guide.md", "Guide", body)
	require.Len(t, chunks, 4)
	root, a := chunks[0], chunks[1]

	candidates := []candidate{
		{doc: schema.ChunkDocument{ID: a.ID.String(), DocID: a.ID.Doc.String()}, score: 5},
	}
	out, err := s.aggregate(candidates, DefaultAggregationThreshold)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, a.ID.String(), out[0].doc.ID)
	assert.NotEqual(t, root.ID.String(), out[0].doc.ID)
}
