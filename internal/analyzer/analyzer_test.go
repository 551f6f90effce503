package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLanguage(t *testing.T) {
	_, err := New("klingon")
	assert.Error(t, err)
}

func TestNewAcceptsCaseInsensitiveNames(t *testing.T) {
	a, err := New("ENGLISH")
	require.NoError(t, err)
	assert.Equal(t, "english", a.Language())
}

func TestAnalyzeLowercasesAndStems(t *testing.T) {
	a, err := New("english")
	require.NoError(t, err)

	tokens := a.Analyze("Running Runs")
	require.Len(t, tokens, 2)
	assert.Equal(t, tokens[0], tokens[1])
}

func TestAnalyzeDropsOverlongTokens(t *testing.T) {
	a, err := New("english")
	require.NoError(t, err)

	long := strings.Repeat("a", 41)
	tokens := a.Analyze("short " + long + " word")
	for _, tok := range tokens {
		assert.LessOrEqual(t, len(tok), maxTokenBytes)
	}
	assert.NotContains(t, tokens, long)
}

func TestAnalyzeSplitsOnPunctuation(t *testing.T) {
	a, err := New("english")
	require.NoError(t, err)

	tokens := a.Analyze("error-handling, retry_logic!")
	assert.Contains(t, tokens, "error")
	assert.Contains(t, tokens, "handl")
}

func TestTamilPassesThroughUnstemmed(t *testing.T) {
	a, err := New("Tamil")
	require.NoError(t, err)

	tokens := a.Analyze("தமிழ் word")
	assert.Contains(t, tokens, "word")
}
