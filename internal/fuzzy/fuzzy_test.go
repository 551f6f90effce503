package fuzzy

import (
	"testing"

	bleveindex "github.com/blevesearch/bleve/v2/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFieldDict struct {
	terms []string
	pos   int
}

func (f *fakeFieldDict) Next() (*bleveindex.DictEntry, error) {
	if f.pos >= len(f.terms) {
		return nil, nil
	}
	e := &bleveindex.DictEntry{Term: f.terms[f.pos], Count: 1}
	f.pos++
	return e, nil
}

func (f *fakeFieldDict) Close() error { return nil }

type fakeDictionary struct {
	fields map[string][]string
}

func (f *fakeDictionary) FieldDict(field string) (bleveindex.FieldDict, error) {
	return &fakeFieldDict{terms: f.fields[field]}, nil
}

func TestExpandZeroDistanceReturnsOnlyTerm(t *testing.T) {
	dict := &fakeDictionary{fields: map[string][]string{"body": {"rust", "dust", "golang"}}}
	matches, err := Expand(dict, "body", "rust", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, matches)
}

func TestExpandFindsNearbyTerms(t *testing.T) {
	dict := &fakeDictionary{fields: map[string][]string{"body": {"rust", "dust", "bust", "golang"}}}
	matches, err := Expand(dict, "body", "rust", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rust", "dust", "bust"}, matches)
}

func TestExpandFallsBackToTermWhenNoMatches(t *testing.T) {
	dict := &fakeDictionary{fields: map[string][]string{"body": {"golang", "python"}}}
	matches, err := Expand(dict, "body", "rust", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, matches)
}

func TestFindTermMappingsCoversEveryToken(t *testing.T) {
	dict := &fakeDictionary{fields: map[string][]string{"body": {"rust", "dust"}}}
	mappings, err := FindTermMappings(dict, "body", []string{"rust", "unrelated"}, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rust", "dust"}, mappings["rust"])
	assert.Equal(t, []string{"unrelated"}, mappings["unrelated"])
}
