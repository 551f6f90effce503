// Package chunk builds a hierarchical ChunkTree from a markdown document's
// body, following the document's heading structure: each ATX heading
// becomes a node nested under the nearest preceding heading of lower level,
// with the document root covering the whole body.
package chunk

import (
	"github.com/Aman-CERP/ra/internal/ids"
	"github.com/Aman-CERP/ra/internal/slug"
)

// Node is one node in a ChunkTree: either the document root (Depth 0, no
// heading) or a heading-bounded section.
type Node struct {
	ID       ids.ChunkId
	ParentID *ids.ChunkId

	Title string
	Body  string

	// Hierarchy lists ancestor titles from root (inclusive) to this node.
	Hierarchy []string

	Depth        int
	Position     int
	ByteStart    int
	ByteEnd      int
	SiblingCount int
	Children     []*Node
}

// ChunkTree is the parsed, hierarchical representation of one document.
type ChunkTree struct {
	Root *Node
}

// heading is one scanned ATX heading occurrence.
type heading struct {
	level     int
	text      string
	lineStart int // byte offset of the start of the heading line
}

// Build parses body (the document content after frontmatter has been
// stripped) into a ChunkTree. tree and path feed the chunk IDs; title is
// the document-level title (from frontmatter, a leading H1, or the
// filename — the caller decides).
func Build(body, tree, path, title string) *ChunkTree {
	headings := scanHeadings(body)
	sl := slug.New()

	root := &Node{
		ID:        ids.NewChunkId(tree, path, ""),
		ParentID:  nil,
		Title:     title,
		Hierarchy: []string{title},
		Depth:     0,
		ByteStart: 0,
		ByteEnd:   len(body),
	}

	if len(headings) == 0 {
		root.Body = body
		root.SiblingCount = 1
		return &ChunkTree{Root: root}
	}

	nodes := make([]*Node, 0, len(headings)+1)
	nodes = append(nodes, root)

	// stack holds the chain of ancestors currently open, ordered root-first.
	stack := []*Node{root}

	for _, h := range headings {
		for len(stack) > 1 && stack[len(stack)-1].Depth >= h.level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]

		// Nested slugs are prefixed by their parent's slug (e.g. "#a-b" for
		// "## B" under "# A"), keeping the ancestor relation
		// ids.IsAncestor relies on: a child's slug is always its parent's
		// slug plus "-" plus its own, deduplicated as one composed string.
		own := sl.Base(h.text)
		composed := own
		if parent.ID.Slug != "" {
			composed = parent.ID.Slug + "-" + own
		}
		slugged := sl.Dedup(composed)
		hierarchy := append(append([]string{}, parent.Hierarchy...), h.text)

		node := &Node{
			ID:        ids.NewChunkId(tree, path, slugged),
			Title:     h.text,
			Hierarchy: hierarchy,
			Depth:     h.level,
			ByteStart: h.lineStart,
			ByteEnd:   len(body),
		}
		parentID := parent.ID
		node.ParentID = &parentID

		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
		nodes = append(nodes, node)
	}

	closeSpans(root)
	assignSiblingCounts(root)
	assignPositionsAndBodies(root, body)

	return &ChunkTree{Root: root}
}

// closeSpans fixes each node's ByteEnd to the start of its next sibling (or,
// lacking one, the parent's own end), then recurses into children. A node's
// span always contains all of its descendants.
func closeSpans(n *Node) {
	for i, child := range n.Children {
		if i+1 < len(n.Children) {
			child.ByteEnd = n.Children[i+1].ByteStart
		} else {
			child.ByteEnd = n.ByteEnd
		}
	}
	for _, child := range n.Children {
		closeSpans(child)
	}
}

func assignSiblingCounts(n *Node) {
	count := len(n.Children)
	for _, child := range n.Children {
		child.SiblingCount = count
		assignSiblingCounts(child)
	}
	if n.ParentID == nil {
		n.SiblingCount = 1
	}
}

// assignPositionsAndBodies walks the tree in pre-order, numbering nodes and
// slicing each node's own body: its byte span minus the spans already
// claimed by its children.
func assignPositionsAndBodies(root *Node, body string) {
	pos := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		n.Position = pos
		pos++

		ownStart := n.ByteStart
		if len(n.Children) == 0 {
			n.Body = sliceBytes(body, ownStart, n.ByteEnd)
		} else {
			n.Body = sliceBytes(body, ownStart, n.Children[0].ByteStart)
		}

		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
}

func sliceBytes(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}

// Chunk is a flattened, indexable representation of one tree node.
type Chunk struct {
	ID           ids.ChunkId
	ParentID     *ids.ChunkId
	Title        string
	Body         string
	Hierarchy    []string
	Depth        int
	Position     int
	ByteStart    int
	ByteEnd      int
	SiblingCount int
}

// Extract flattens the tree into chunks in pre-order (root first).
func (t *ChunkTree) Extract() []Chunk {
	var chunks []Chunk
	var walk func(n *Node)
	walk = func(n *Node) {
		chunks = append(chunks, Chunk{
			ID:           n.ID,
			ParentID:     n.ParentID,
			Title:        n.Title,
			Body:         n.Body,
			Hierarchy:    n.Hierarchy,
			Depth:        n.Depth,
			Position:     n.Position,
			ByteStart:    n.ByteStart,
			ByteEnd:      n.ByteEnd,
			SiblingCount: n.SiblingCount,
		})
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(t.Root)
	return chunks
}

// NodeCount returns the total number of nodes in the tree.
func (t *ChunkTree) NodeCount() int {
	count := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		count++
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(t.Root)
	return count
}

// Breadcrumb joins a chunk's hierarchy with " › " separators.
func (c Chunk) Breadcrumb() string {
	out := ""
	for i, h := range c.Hierarchy {
		if i > 0 {
			out += " › "
		}
		out += h
	}
	return out
}
