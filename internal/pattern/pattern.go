// Package pattern compiles per-tree include/exclude glob pattern sets and
// matches candidate paths against them. Patterns use doublestar syntax
// (`**` for arbitrary depth, `*`/`?`/`[...]` within a path segment),
// matching the original implementation's use of a globset-style matcher.
package pattern

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// Set is a compiled include/exclude pattern pair for one tree.
type Set struct {
	include []string
	exclude []string
}

// Compile validates and stores the include/exclude patterns for a tree.
// An empty include list means "include everything not excluded".
func Compile(include, exclude []string) (*Set, error) {
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, raerrors.New(raerrors.ErrCodeInvalidPattern,
				fmt.Sprintf("invalid include pattern %q", p), nil)
		}
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, raerrors.New(raerrors.ErrCodeInvalidPattern,
				fmt.Sprintf("invalid exclude pattern %q", p), nil)
		}
	}

	return &Set{include: include, exclude: exclude}, nil
}

// Matches reports whether relPath (slash-separated, relative to the tree
// root) should be indexed: it must match an include pattern (or no include
// patterns are configured) and must not match any exclude pattern. Exclude
// takes precedence over include.
func (s *Set) Matches(relPath string) bool {
	for _, p := range s.exclude {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return false
		}
	}

	if len(s.include) == 0 {
		return true
	}

	for _, p := range s.include {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}
