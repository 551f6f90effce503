// Package compiler translates a parsed query expression into a bleve query,
// applying per-field relevance boosts and fuzzy term expansion.
package compiler

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Aman-CERP/ra/internal/analyzer"
	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/fuzzy"
	"github.com/Aman-CERP/ra/internal/queryast"
	"github.com/Aman-CERP/ra/internal/schema"
)

// searchableFields lists the fields a bare (unprefixed) term or phrase is
// compiled against, in schema.FieldBoosts order.
var searchableFields = []string{
	schema.FieldTitle,
	schema.FieldTags,
	schema.FieldPath,
	schema.FieldPathComponents,
	schema.FieldBody,
}

// boostable is the subset of bleve's query types that carry a score
// multiplier, narrowed so Boost nodes can wrap any compiled sub-query.
type boostable interface {
	SetBoost(b float64)
}

// Compiler turns a parsed expression into a bleve query.Query, resolving
// fuzzy term expansion against idx's term dictionaries.
type Compiler struct {
	idx           fuzzy.Dictionary
	az            *analyzer.Analyzer
	fuzzyDistance int
}

// New builds a Compiler. fuzzyDistance is the edit distance applied to bare
// terms (0 disables fuzzy expansion); phrases are never fuzzed.
func New(idx fuzzy.Dictionary, az *analyzer.Analyzer, fuzzyDistance int) *Compiler {
	return &Compiler{idx: idx, az: az, fuzzyDistance: fuzzyDistance}
}

// Compile translates expr into a bleve query restricted to the default
// searchable fields. A nil expr (empty query string) compiles to nil with no
// error; the searcher answers such a query with an empty result.
func (c *Compiler) Compile(expr queryast.Expr) (query.Query, error) {
	if expr == nil {
		return nil, nil
	}
	return c.compile(expr, searchableFields)
}

func (c *Compiler) compile(expr queryast.Expr, fields []string) (query.Query, error) {
	switch e := expr.(type) {
	case queryast.Term:
		return c.compileTerm(e, fields)
	case queryast.Phrase:
		return c.compilePhrase(e, fields)
	case queryast.Field:
		return c.compileFieldScope(e)
	case queryast.Not:
		return c.compileNot(e, fields)
	case queryast.And:
		return c.compileAnd(e, fields)
	case queryast.Or:
		return c.compileOr(e, fields)
	case queryast.Boost:
		return c.compileBoost(e, fields)
	default:
		return nil, raerrors.New(raerrors.ErrCodeQueryCompile, "unrecognized query expression", nil)
	}
}

func (c *Compiler) compileTerm(t queryast.Term, fields []string) (query.Query, error) {
	tokens := c.az.Analyze(t.Text)
	if len(tokens) == 0 {
		return bleve.NewMatchNoneQuery(), nil
	}

	tokenQueries := make([]query.Query, 0, len(tokens))
	for _, tok := range tokens {
		fq, err := c.compileTokenAcrossFields(tok, fields)
		if err != nil {
			return nil, err
		}
		tokenQueries = append(tokenQueries, fq)
	}
	if len(tokenQueries) == 1 {
		return tokenQueries[0], nil
	}
	return bleve.NewConjunctionQuery(tokenQueries...), nil
}

// compileTokenAcrossFields builds a should-disjunction of one term (or its
// fuzzy expansions) across every field in fields, each scaled by that
// field's relevance boost.
func (c *Compiler) compileTokenAcrossFields(token string, fields []string) (query.Query, error) {
	perField := make([]query.Query, 0, len(fields))
	for _, field := range fields {
		boost := schema.FieldBoosts[field]

		terms := []string{token}
		if c.fuzzyDistance > 0 && c.idx != nil {
			expanded, err := fuzzy.Expand(c.idx, field, token, c.fuzzyDistance)
			if err != nil {
				return nil, raerrors.Wrap(raerrors.ErrCodeQueryCompile, err)
			}
			terms = expanded
		}

		perField = append(perField, termDisjunction(terms, field, boost))
	}
	if len(perField) == 1 {
		return perField[0], nil
	}
	return bleve.NewDisjunctionQuery(perField...), nil
}

// termDisjunction builds a should-disjunction of exact term queries on
// field, each carrying boost. A single term skips the wrapping disjunction.
func termDisjunction(terms []string, field string, boost float64) query.Query {
	if len(terms) == 1 {
		tq := bleve.NewTermQuery(terms[0])
		tq.SetField(field)
		tq.SetBoost(boost)
		return tq
	}
	qs := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		tq := bleve.NewTermQuery(term)
		tq.SetField(field)
		tq.SetBoost(boost)
		qs = append(qs, tq)
	}
	return bleve.NewDisjunctionQuery(qs...)
}

func (c *Compiler) compilePhrase(p queryast.Phrase, fields []string) (query.Query, error) {
	stemmed := make([]string, 0, len(p.Tokens))
	for _, tok := range p.Tokens {
		stemmed = append(stemmed, c.az.Analyze(tok)...)
	}
	if len(stemmed) == 0 {
		return bleve.NewMatchNoneQuery(), nil
	}

	perField := make([]query.Query, 0, len(fields))
	for _, field := range fields {
		pq := bleve.NewPhraseQuery(stemmed, field)
		pq.SetBoost(schema.FieldBoosts[field])
		perField = append(perField, pq)
	}
	if len(perField) == 1 {
		return perField[0], nil
	}
	return bleve.NewDisjunctionQuery(perField...), nil
}

func (c *Compiler) compileFieldScope(f queryast.Field) (query.Query, error) {
	if _, ok := schema.FieldBoosts[f.Name]; !ok {
		return nil, raerrors.New(raerrors.ErrCodeQueryCompile, "unknown field: "+f.Name, nil).
			WithDetail("field", f.Name)
	}
	return c.compile(f.Expr, []string{f.Name})
}

func (c *Compiler) compileNot(n queryast.Not, fields []string) (query.Query, error) {
	inner, err := c.compile(n.Expr, fields)
	if err != nil {
		return nil, err
	}
	bq := bleve.NewBooleanQuery()
	bq.AddMust(bleve.NewMatchAllQuery())
	bq.AddMustNot(inner)
	return bq, nil
}

func (c *Compiler) compileAnd(a queryast.And, fields []string) (query.Query, error) {
	bq := bleve.NewBooleanQuery()
	hasMust := false
	for _, child := range a.Exprs {
		if not, ok := child.(queryast.Not); ok {
			inner, err := c.compile(not.Expr, fields)
			if err != nil {
				return nil, err
			}
			bq.AddMustNot(inner)
			continue
		}
		compiled, err := c.compile(child, fields)
		if err != nil {
			return nil, err
		}
		bq.AddMust(compiled)
		hasMust = true
	}
	if !hasMust {
		bq.AddMust(bleve.NewMatchAllQuery())
	}
	return bq, nil
}

func (c *Compiler) compileOr(o queryast.Or, fields []string) (query.Query, error) {
	qs := make([]query.Query, 0, len(o.Exprs))
	for _, child := range o.Exprs {
		compiled, err := c.compile(child, fields)
		if err != nil {
			return nil, err
		}
		qs = append(qs, compiled)
	}
	return bleve.NewDisjunctionQuery(qs...), nil
}

func (c *Compiler) compileBoost(b queryast.Boost, fields []string) (query.Query, error) {
	inner, err := c.compile(b.Expr, fields)
	if err != nil {
		return nil, err
	}
	if bq, ok := inner.(boostable); ok {
		bq.SetBoost(float64(b.Factor))
	}
	return inner, nil
}
