package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSignal struct{ terms []string }

func (f fakeSignal) Terms() []string { return f.terms }

func TestSearchContextDedupesSignalTermsAndFindsMatches(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nRust error handling patterns.\n")

	signals := []SignalSource{
		fakeSignal{terms: []string{"rust", "error"}},
		fakeSignal{terms: []string{"error", "handling"}},
	}
	results, _, err := s.SearchContext(signals, 10, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchContextEmptySignalsReturnsNoResults(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nhello.\n")

	results, stats, err := s.SearchContext(nil, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, ElbowEmpty, stats.Elbow.Kind)
}

func TestTermIDFReportsNotPresentForUnknownTerm(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nhello world.\n")

	_, found, err := s.TermIDF("zzzznotindexed", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTermIDFFindsIndexedTerm(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nhello rust world.\n")

	idf, found, err := s.TermIDF("rust", nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Greater(t, idf, 0.0)
}

func TestNumDocsCountsIndexedChunks(t *testing.T) {
	s, idx := newTestSearcher(t, nil)
	chunks := indexDoc(t, idx, "docs", "guide.md", "Guide", "# Intro\nhello.\n\n## More\nmore text.\n")

	n, err := s.NumDocs(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(chunks)), n)
}
