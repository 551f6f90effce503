// Package fuzzy expands a query term into the set of indexed terms within a
// given Levenshtein edit distance, so queries tolerate small misspellings.
package fuzzy

import (
	bleveindex "github.com/blevesearch/bleve/v2/index"
	"github.com/blevesearch/vellum/levenshtein"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// Dictionary is the subset of bleve.Index needed to walk a field's term
// dictionary, narrowed for testability.
type Dictionary interface {
	FieldDict(field string) (bleveindex.FieldDict, error)
}

// Expand returns every term in field's dictionary within editDistance of
// term (transpositions counted as one edit). editDistance 0 returns just
// term, with no dictionary walk. If the walk finds nothing, term itself is
// returned so the caller's term union is never empty.
func Expand(idx Dictionary, field, term string, editDistance int) ([]string, error) {
	if editDistance <= 0 {
		return []string{term}, nil
	}

	builder, err := levenshtein.NewLevenshteinAutomatonBuilder(uint8(editDistance), true)
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to build levenshtein automaton", err)
	}
	dfa, err := builder.BuildDfa(term, uint8(editDistance))
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to build levenshtein dfa", err)
	}

	fd, err := idx.FieldDict(field)
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to open field dictionary for "+field, err)
	}
	defer fd.Close()

	var matches []string
	for {
		entry, err := fd.Next()
		if err != nil {
			return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to walk field dictionary", err)
		}
		if entry == nil {
			break
		}
		if accepts(dfa, entry.Term) {
			matches = append(matches, entry.Term)
		}
	}

	if len(matches) == 0 {
		return []string{term}, nil
	}
	return matches, nil
}

// accepts drives dfa byte by byte over s and reports whether the resulting
// state is a match.
func accepts(dfa *levenshtein.DFA, s string) bool {
	state := dfa.Start()
	for i := 0; i < len(s); i++ {
		if !dfa.CanMatch(state) {
			return false
		}
		state = dfa.Accept(state, s[i])
	}
	return dfa.IsMatch(state)
}

// FindTermMappings expands every query token against field's dictionary,
// for verbose match-detail reporting. A token with no dictionary match maps
// to itself so every token always has at least one entry.
func FindTermMappings(idx Dictionary, field string, queryTokens []string, editDistance int) (map[string][]string, error) {
	out := make(map[string][]string, len(queryTokens))
	for _, tok := range queryTokens {
		matches, err := Expand(idx, field, tok, editDistance)
		if err != nil {
			return nil, err
		}
		out[tok] = matches
	}
	return out, nil
}
