// Package analyzer implements the token pipeline shared by indexing and
// query compilation: tokenize on whitespace/punctuation, lowercase, drop
// overlong tokens, then apply a language-specific Snowball stemmer.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/arabic"
	"github.com/blevesearch/snowballstem/danish"
	"github.com/blevesearch/snowballstem/dutch"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/finnish"
	"github.com/blevesearch/snowballstem/french"
	"github.com/blevesearch/snowballstem/german"
	"github.com/blevesearch/snowballstem/greek"
	"github.com/blevesearch/snowballstem/hungarian"
	"github.com/blevesearch/snowballstem/italian"
	"github.com/blevesearch/snowballstem/norwegian"
	"github.com/blevesearch/snowballstem/portuguese"
	"github.com/blevesearch/snowballstem/romanian"
	"github.com/blevesearch/snowballstem/russian"
	"github.com/blevesearch/snowballstem/spanish"
	"github.com/blevesearch/snowballstem/swedish"
	"github.com/blevesearch/snowballstem/turkish"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// maxTokenBytes is the longest token the analyzer will keep; anything
// longer is almost always machine-generated noise (hashes, base64 blobs).
const maxTokenBytes = 40

// StemFunc runs one language's Snowball algorithm over env in place.
type StemFunc func(env *snowballstem.Env) bool

// Tamil has no Snowball stemmer; its tokens pass through unchanged.
const Tamil = "tamil"

// Stemmers maps a lowercase language name to its Snowball stem function.
// Shared with internal/schema, which wires the same table into bleve's
// token filter chain.
var Stemmers = map[string]StemFunc{
	"arabic":     arabic.Stem,
	"danish":     danish.Stem,
	"dutch":      dutch.Stem,
	"english":    english.Stem,
	"finnish":    finnish.Stem,
	"french":     french.Stem,
	"german":     german.Stem,
	"greek":      greek.Stem,
	"hungarian":  hungarian.Stem,
	"italian":    italian.Stem,
	"norwegian":  norwegian.Stem,
	"portuguese": portuguese.Stem,
	"romanian":   romanian.Stem,
	"russian":    russian.Stem,
	"spanish":    spanish.Stem,
	"swedish":    swedish.Stem,
	"turkish":    turkish.Stem,
}

// Analyzer tokenizes and stems text for a single configured language.
type Analyzer struct {
	language string
	stem     StemFunc // nil for tamil (no-op passthrough)
}

// New resolves language (case-insensitive) to an Analyzer. Returns an error
// for unrecognized language names.
func New(language string) (*Analyzer, error) {
	name := strings.ToLower(strings.TrimSpace(language))
	if name == Tamil {
		return &Analyzer{language: name, stem: nil}, nil
	}
	fn, ok := Stemmers[name]
	if !ok {
		return nil, raerrors.New(raerrors.ErrCodeInvalidLanguage, "unsupported analyzer language: "+language, nil)
	}
	return &Analyzer{language: name, stem: fn}, nil
}

// Language returns the resolved language name.
func (a *Analyzer) Language() string {
	return a.language
}

// Analyze tokenizes text and returns the stemmed token stream.
func (a *Analyzer) Analyze(text string) []string {
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		if len(tok) > maxTokenBytes {
			continue
		}
		out = append(out, a.stemToken(tok))
	}
	return out
}

// Token pairs a stemmed token with its byte span in the original text, for
// callers (match-range extraction) that need to map matched terms back to
// source positions.
type Token struct {
	Text       string
	Start, End int
}

// AnalyzeWithOffsets is Analyze but retains each token's byte span in text.
func (a *Analyzer) AnalyzeWithOffsets(text string) []Token {
	raw := tokenizeWithOffsets(text)
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		lowered := strings.ToLower(tok.Text)
		if len(lowered) > maxTokenBytes {
			continue
		}
		out = append(out, Token{Text: a.stemToken(lowered), Start: tok.Start, End: tok.End})
	}
	return out
}

func (a *Analyzer) stemToken(tok string) string {
	if a.stem == nil {
		return tok
	}
	env := snowballstem.NewEnv(tok)
	a.stem(env)
	return env.Current()
}

// tokenize splits on whitespace and ASCII punctuation other than '_',
// keeping runs of letters, digits, underscores, and non-ASCII characters
// together.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		if isWordRune(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// rawToken is a pre-lowercase, pre-stem token with its byte span in the
// source text.
type rawToken struct {
	Text       string
	Start, End int
}

// tokenizeWithOffsets is tokenize but records each token's byte span.
func tokenizeWithOffsets(text string) []rawToken {
	var tokens []rawToken
	var b strings.Builder
	start := -1
	flush := func(end int) {
		if b.Len() > 0 {
			tokens = append(tokens, rawToken{Text: b.String(), Start: start, End: end})
			b.Reset()
			start = -1
		}
	}
	for i, r := range text {
		if isWordRune(r) {
			if start == -1 {
				start = i
			}
			b.WriteRune(r)
		} else {
			flush(i)
		}
	}
	flush(len(text))
	return tokens
}

func isWordRune(r rune) bool {
	if r > unicode.MaxASCII {
		return !unicode.IsSpace(r)
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
