package queryast

import (
	"strconv"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// Parse lexes and parses a query string into an expression tree. Empty
// input (or input that is only whitespace) yields a nil Expr and no error —
// callers decide what "no query" means for them.
func Parse(input string) (Expr, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, parseErrorAt(p.pos, "unexpected token after expression")
	}
	return expr, nil
}

func parseErrorAt(tokenIndex int, message string) error {
	return raerrors.New(raerrors.ErrCodeQueryParse, message, nil).
		WithDetail("token_index", strconv.Itoa(tokenIndex))
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() (Token, bool) {
	if p.atEnd() {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// parseOr handles the weakest-binding operator: a sequence of AND-groups
// joined by the OR keyword.
func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	exprs := []Expr{first}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOr {
			break
		}
		p.advance()
		if p.atEnd() {
			return nil, parseErrorAt(p.pos, "dangling OR with no right-hand side")
		}
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return NewOr(exprs), nil
}

// parseAnd handles implicit conjunction: consecutive unary expressions with
// no explicit operator between them.
func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	exprs := []Expr{first}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == TokenOr || tok.Kind == TokenRParen {
			break
		}
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return NewAnd(exprs), nil
}

// parseUnary handles the leading '-' negation prefix.
func (p *parser) parseUnary() (Expr, error) {
	tok, ok := p.peek()
	if ok && tok.Kind == TokenNot {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Expr: inner}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression and applies a trailing '^factor'
// boost, if present.
func (p *parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	tok, ok := p.peek()
	if ok && tok.Kind == TokenBoost {
		p.advance()
		return NewBoost(expr, tok.Factor), nil
	}
	return expr, nil
}

// parsePrimary parses an atom: a term, phrase, parenthesized group, or a
// field-prefixed expression.
func (p *parser) parsePrimary() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, parseErrorAt(p.pos, "unexpected end of query")
	}

	switch tok.Kind {
	case TokenTerm:
		p.advance()
		return Term{Text: tok.Text}, nil

	case TokenPhrase:
		p.advance()
		return Phrase{Tokens: splitWords(tok.Text)}, nil

	case TokenLParen:
		p.advance()
		if _, ok := p.peek(); !ok {
			return nil, parseErrorAt(p.pos, "unmatched '('")
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		rparen, ok := p.peek()
		if !ok || rparen.Kind != TokenRParen {
			return nil, parseErrorAt(p.pos, "unmatched '('")
		}
		p.advance()
		return inner, nil

	case TokenFieldPrefix:
		p.advance()
		inner, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return Field{Name: tok.Text, Expr: inner}, nil

	default:
		return nil, parseErrorAt(p.pos, "unexpected token")
	}
}

// splitWords splits phrase content on whitespace into its constituent
// tokens, preserving order.
func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
