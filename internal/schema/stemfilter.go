package schema

import (
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/snowballstem"

	"github.com/Aman-CERP/ra/internal/analyzer"
)

// stemFilterTypeName is the registry type name used to construct ra_stem_filter.
const stemFilterTypeName = "ra_stem_filter_type"

func init() {
	_ = registry.RegisterTokenFilter(stemFilterTypeName, stemFilterConstructor)
}

// stemTokenFilter stems each token with a fixed language's Snowball
// algorithm (or passes tokens through unchanged for Tamil, which has no
// Snowball stemmer), reusing the same stemmer table internal/analyzer
// applies outside of bleve's pipeline (query-term normalization).
type stemTokenFilter struct {
	stem analyzer.StemFunc
}

func stemFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	lang, _ := config["lang"].(string)
	name := strings.ToLower(strings.TrimSpace(lang))
	if name == analyzer.Tamil {
		return &stemTokenFilter{stem: nil}, nil
	}
	fn, ok := analyzer.Stemmers[name]
	if !ok {
		fn = analyzer.Stemmers["english"]
	}
	return &stemTokenFilter{stem: fn}, nil
}

// Filter implements analysis.TokenFilter.
func (f *stemTokenFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	if f.stem == nil {
		return input
	}
	for _, token := range input {
		env := snowballstem.NewEnv(string(token.Term))
		f.stem(env)
		token.Term = []byte(env.Current())
	}
	return input
}
