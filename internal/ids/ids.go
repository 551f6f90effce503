// Package ids parses and formats the document and chunk identifiers used
// throughout the index: "tree:path" for documents, "tree:path#slug" for
// chunks within a document.
package ids

import (
	"strings"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// DocId identifies a document within a tree.
type DocId struct {
	Tree string
	Path string
}

// ChunkId identifies a chunk within a document. Slug is empty for the
// document-level chunk (the whole file).
type ChunkId struct {
	Doc  DocId
	Slug string
}

// NewDocId builds a DocId from a tree name and a slash-separated relative path.
func NewDocId(tree, path string) DocId {
	return DocId{Tree: tree, Path: strings.ReplaceAll(path, "\\", "/")}
}

// String formats the ID as "tree:path".
func (d DocId) String() string {
	return d.Tree + ":" + d.Path
}

// ParseDocId parses a "tree:path" identifier.
func ParseDocId(id string) (DocId, error) {
	tree, path, ok := strings.Cut(id, ":")
	if !ok || tree == "" || path == "" {
		return DocId{}, raerrors.New(raerrors.ErrCodeIDInvalidFormat, "invalid document id format: "+id, nil)
	}
	if len(tree) == 1 && len(id) > 1 && id[1] == ':' {
		return DocId{}, raerrors.New(raerrors.ErrCodeIDInvalidFormat, "invalid document id format: "+id, nil)
	}
	return DocId{Tree: tree, Path: strings.ReplaceAll(path, "\\", "/")}, nil
}

// NewChunkId builds a ChunkId from a tree, path, and optional slug. An empty
// slug refers to the document-level chunk.
func NewChunkId(tree, path, slug string) ChunkId {
	return ChunkId{Doc: NewDocId(tree, path), Slug: slug}
}

// String formats the ID as "tree:path#slug", omitting the "#slug" suffix
// when Slug is empty.
func (c ChunkId) String() string {
	if c.Slug == "" {
		return c.Doc.String()
	}
	return c.Doc.String() + "#" + c.Slug
}

// IsDocument reports whether this ID refers to an entire document rather
// than a specific section.
func (c ChunkId) IsDocument() bool {
	return c.Slug == ""
}

// ParseChunkId parses a "tree:path#slug" or "tree:path" identifier.
func ParseChunkId(id string) (ChunkId, error) {
	tree, rest, ok := strings.Cut(id, ":")
	if !ok || tree == "" || rest == "" {
		return ChunkId{}, raerrors.New(raerrors.ErrCodeIDInvalidFormat, "invalid chunk id format: "+id, nil)
	}
	if len(tree) == 1 && len(id) > 1 && id[1] == ':' {
		return ChunkId{}, raerrors.New(raerrors.ErrCodeIDInvalidFormat, "invalid chunk id format: "+id, nil)
	}

	path := rest
	slug := ""
	if p, s, found := strings.Cut(rest, "#"); found {
		if p == "" {
			return ChunkId{}, raerrors.New(raerrors.ErrCodeIDInvalidFormat, "invalid chunk id format: "+id, nil)
		}
		path, slug = p, s
	}

	return ChunkId{
		Doc:  DocId{Tree: tree, Path: strings.ReplaceAll(path, "\\", "/")},
		Slug: slug,
	}, nil
}

// splitID splits a raw chunk id string into its document-id prefix and an
// optional slug, without validating the tree/path portion.
func splitID(id string) (string, string, bool) {
	if hashPos := strings.IndexByte(id, '#'); hashPos >= 0 {
		return id[:hashPos], id[hashPos+1:], true
	}
	return id, "", false
}

// IsAncestor reports whether ancestorID is an ancestor of descendantID: both
// must belong to the same document, and ancestorID's slug must either be
// empty (the document node is an ancestor of every chunk) or be a strict
// "-"-delimited prefix of descendantID's slug.
func IsAncestor(ancestorID, descendantID string) bool {
	if ancestorID == descendantID {
		return false
	}

	ancestorDoc, ancestorSlug, ancestorHasSlug := splitID(ancestorID)
	descendantDoc, descendantSlug, descendantHasSlug := splitID(descendantID)

	if ancestorDoc != descendantDoc {
		return false
	}

	if !ancestorHasSlug {
		return descendantHasSlug
	}
	if !descendantHasSlug {
		return false
	}

	if len(descendantSlug) <= len(ancestorSlug) {
		return false
	}
	return strings.HasPrefix(descendantSlug, ancestorSlug) && descendantSlug[len(ancestorSlug)] == '-'
}

// IsDescendant is the inverse of IsAncestor.
func IsDescendant(descendantID, ancestorID string) bool {
	return IsAncestor(ancestorID, descendantID)
}

// SplitID splits a raw chunk id string into its document-id prefix and slug.
// The returned bool reports whether a "#" was present.
func SplitID(id string) (docID string, slug string, hasSlug bool) {
	return splitID(id)
}
