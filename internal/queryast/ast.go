// Package queryast lexes and parses the query language used for search: bare
// terms, quoted phrases, OR/NOT, parenthesized grouping, field scoping
// (title:...), and boost suffixes (term^2.5).
package queryast

// Expr is a node in a parsed query expression tree.
type Expr interface {
	isExpr()
}

// Term is a single search word.
type Term struct {
	Text string
}

// Phrase is an exact, ordered sequence of words.
type Phrase struct {
	Tokens []string
}

// Not negates its inner expression: matches must NOT satisfy it.
type Not struct {
	Expr Expr
}

// And requires every sub-expression to match.
type And struct {
	Exprs []Expr
}

// Or requires at least one sub-expression to match.
type Or struct {
	Exprs []Expr
}

// Field restricts an expression to a single named field.
type Field struct {
	Name string
	Expr Expr
}

// Boost multiplies its inner expression's score by Factor.
type Boost struct {
	Expr   Expr
	Factor float32
}

func (Term) isExpr()   {}
func (Phrase) isExpr() {}
func (Not) isExpr()    {}
func (And) isExpr()    {}
func (Or) isExpr()     {}
func (Field) isExpr()  {}
func (Boost) isExpr()  {}

// NewAnd builds an And expression, flattening nested Ands and unwrapping a
// single element rather than wrapping it.
func NewAnd(exprs []Expr) Expr {
	flat := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if inner, ok := e.(And); ok {
			flat = append(flat, inner.Exprs...)
		} else {
			flat = append(flat, e)
		}
	}
	switch len(flat) {
	case 0:
		return And{}
	case 1:
		return flat[0]
	default:
		return And{Exprs: flat}
	}
}

// NewOr builds an Or expression, flattening nested Ors and unwrapping a
// single element rather than wrapping it.
func NewOr(exprs []Expr) Expr {
	flat := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if inner, ok := e.(Or); ok {
			flat = append(flat, inner.Exprs...)
		} else {
			flat = append(flat, e)
		}
	}
	switch len(flat) {
	case 0:
		return Or{}
	case 1:
		return flat[0]
	default:
		return Or{Exprs: flat}
	}
}

// NewBoost wraps expr so its score is multiplied by factor. Boost is always
// constructed through this function (or directly via the surface `^factor`
// syntax parsed below) — never nested implicitly by other constructors.
func NewBoost(expr Expr, factor float32) Expr {
	return Boost{Expr: expr, Factor: factor}
}
