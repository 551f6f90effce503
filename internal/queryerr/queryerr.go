// Package queryerr wraps query lex/parse/compile failures with the
// original query string and a byte offset so callers can render a caret
// under the failing position.
package queryerr

import (
	"fmt"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// QueryError describes a failure to lex, parse, or compile a query string.
type QueryError struct {
	Code     string
	Message  string
	Query    string
	Position int
}

func (e *QueryError) Error() string {
	if e.Query == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at byte %d in %q)", e.Message, e.Position, e.Query)
}

// WithQuery attaches the original query string, matching the original
// implementation's two-step construct-then-annotate flow.
func (e *QueryError) WithQuery(query string) *QueryError {
	e.Query = query
	return e
}

// Lex creates a lexer-stage query error at the given byte position.
func Lex(message string, position int) *QueryError {
	return &QueryError{Code: raerrors.ErrCodeQueryLex, Message: message, Position: position}
}

// Parse creates a parser-stage query error at the given byte position.
func Parse(message string, position int) *QueryError {
	return &QueryError{Code: raerrors.ErrCodeQueryParse, Message: message, Position: position}
}

// Compile creates a compiler-stage query error.
func Compile(message string) *QueryError {
	return &QueryError{Code: raerrors.ErrCodeQueryCompile, Message: message}
}

// AsRaError converts a QueryError into the ambient structured error type
// used across the rest of the codebase, preserving the query and position
// as details for logging.
func (e *QueryError) AsRaError() *raerrors.RaError {
	re := raerrors.New(e.Code, e.Message, nil)
	if e.Query != "" {
		re = re.WithDetail("query", e.Query)
		re = re.WithDetail("position", fmt.Sprintf("%d", e.Position))
	}
	return re
}
