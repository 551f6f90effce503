package searcher

import (
	"github.com/blevesearch/bleve/v2"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/schema"
)

// docTreeNode is one chunk of a document's full chunk tree, along with its
// children, assembled from the index's stored structural fields.
type docTreeNode struct {
	doc      schema.ChunkDocument
	children []string // child IDs, in position order
}

// aggregate is Phase 3: candidates are grouped by document, each document's
// full chunk tree is walked pre-order from its root, and any node whose
// children are "present" (candidate or an ancestor of a candidate) at or
// above threshold collapses into one result spanning the node's whole subtree.
func (s *Searcher) aggregate(candidates []candidate, threshold float64) ([]candidate, error) {
	byDoc := make(map[string][]candidate)
	var docOrder []string
	for _, c := range candidates {
		if _, ok := byDoc[c.doc.DocID]; !ok {
			docOrder = append(docOrder, c.doc.DocID)
		}
		byDoc[c.doc.DocID] = append(byDoc[c.doc.DocID], c)
	}

	out := make([]candidate, 0, len(candidates))
	for _, docID := range docOrder {
		docCandidates := byDoc[docID]
		nodes, rootID, err := s.fetchDocumentTree(docID)
		if err != nil {
			return nil, err
		}
		if rootID == "" {
			// tree couldn't be reconstructed (shouldn't happen for a live
			// index); fall back to passing this document's candidates through.
			out = append(out, docCandidates...)
			continue
		}

		scores := make(map[string]float64, len(docCandidates))
		for _, c := range docCandidates {
			scores[c.doc.ID] = c.score
		}

		entries, _ := walkAggregate(nodes, rootID, scores, threshold, true)
		out = append(out, entries...)
	}
	return out, nil
}

// walkAggregate recursively processes one subtree, returning the surviving
// result entries plus whether the subtree is "present" (contains a
// candidate) at all. The document root (isRoot) is held to a stricter
// collapse rule than ordinary sections: per spec, it may only be emitted
// as a single result when the whole document collapsed, never merely
// because its children-present ratio cleared the aggregation threshold.
func walkAggregate(nodes map[string]docTreeNode, id string, scores map[string]float64, threshold float64, isRoot bool) ([]candidate, bool) {
	node := nodes[id]
	score, isCandidate := scores[id]

	if len(node.children) == 0 {
		if isCandidate {
			return []candidate{{doc: node.doc, score: score}}, true
		}
		return nil, false
	}

	var childEntries []candidate
	present := 0
	for _, childID := range node.children {
		entries, childPresent := walkAggregate(nodes, childID, scores, threshold, false)
		childEntries = append(childEntries, entries...)
		if childPresent {
			present++
		}
	}

	collapse := present == len(node.children)
	if !isRoot {
		ratio := float64(present) / float64(len(node.children))
		collapse = ratio >= threshold
	}
	if collapse {
		maxScore := 0.0
		anyPresent := isCandidate
		if isCandidate && score > maxScore {
			maxScore = score
		}
		for _, e := range childEntries {
			anyPresent = true
			if e.score > maxScore {
				maxScore = e.score
			}
		}
		if !anyPresent {
			return nil, false
		}
		return []candidate{{doc: node.doc, score: maxScore}}, true
	}

	out := childEntries
	if isCandidate {
		out = append(out, candidate{doc: node.doc, score: score})
	}
	return out, isCandidate || present > 0
}

// fetchDocumentTree loads every chunk belonging to docID and assembles the
// parent-to-children relationships needed to walk it. Returns the empty
// root id if the document has no chunks (a candidate referencing a deleted
// document, a race with a concurrent reindex).
func (s *Searcher) fetchDocumentTree(docID string) (map[string]docTreeNode, string, error) {
	// doc_id is stored but unindexed (schema.BuildMapping), so the document's
	// chunks are located the same way store.DeleteByPath does: by exact and
	// prefix match against the indexed id field, which shares docID as its
	// document-chunk value and docID+"#"-prefix as its section-chunk values.
	exact := bleve.NewTermQuery(docID)
	exact.SetField(schema.FieldID)
	sections := bleve.NewPrefixQuery(docID + "#")
	sections.SetField(schema.FieldID)
	q := bleve.NewDisjunctionQuery(exact, sections)

	count, err := s.idx.DocCount()
	if err != nil {
		return nil, "", raerrors.New(raerrors.ErrCodeInternal, "failed to read doc count", err)
	}

	req := bleve.NewSearchRequestOptions(q, int(count)+1, 0, false)
	req.Fields = []string{"*"}

	result, err := s.idx.Bleve().Search(req)
	if err != nil {
		return nil, "", raerrors.New(raerrors.ErrCodeInternal, "failed to fetch document chunk tree", err)
	}

	nodes := make(map[string]docTreeNode, len(result.Hits))
	rootID := ""
	for _, hit := range result.Hits {
		doc := documentFromHitFields(hit.ID, hit.Fields)
		nodes[hit.ID] = docTreeNode{doc: doc}
		if doc.ParentID == "" {
			rootID = hit.ID
		}
	}
	for id, n := range nodes {
		if n.doc.ParentID == "" {
			continue
		}
		parent := nodes[n.doc.ParentID]
		parent.children = append(parent.children, id)
		nodes[n.doc.ParentID] = parent
	}
	// children must be visited in document order for position/byte-range
	// reporting to read naturally; Position is assigned pre-order at index
	// time, so sorting by it reconstructs that order.
	for id, n := range nodes {
		sortChildrenByPosition(nodes, n.children)
		nodes[id] = n
	}

	return nodes, rootID, nil
}

func sortChildrenByPosition(nodes map[string]docTreeNode, children []string) {
	for i := 1; i < len(children); i++ {
		for j := i; j > 0 && nodes[children[j-1]].doc.Position > nodes[children[j]].doc.Position; j-- {
			children[j-1], children[j] = children[j], children[j-1]
		}
	}
}
