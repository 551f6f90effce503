// Package store is the bleve-backed index writer and reader: it turns
// chunk trees into stored documents, deletes a file's chunks by path, and
// answers direct lookups. Query compilation and relevance tuning live in
// internal/compiler and pkg/searcher; this package only owns persistence.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Aman-CERP/ra/internal/chunk"
	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/ids"
	"github.com/Aman-CERP/ra/internal/schema"
)

// Index wraps a single bleve index, one per configured tree group, guarding
// every operation with a mutex the way the teacher's writer does.
type Index struct {
	mu     sync.RWMutex
	bleve  bleve.Index
	path   string
	closed bool
}

// validateIndexIntegrity checks an on-disk index for the corruption
// patterns that survive an unclean shutdown: missing, empty, or unparsable
// index_meta.json. Returns nil if the directory doesn't exist yet (a fresh
// index will be created) or looks healthy.
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// isCorruptionError reports whether err is one of the error shapes bleve or
// its underlying bolt store produce when an index's on-disk files are
// damaged, as opposed to an ordinary open failure.
func isCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unexpected end of JSON") ||
		strings.Contains(errStr, "error parsing mapping JSON") ||
		strings.Contains(errStr, "failed to load segment") ||
		strings.Contains(errStr, "error opening bolt") ||
		strings.Contains(errStr, "no such file or directory") ||
		err == bleve.ErrorIndexMetaCorrupt
}

// Open opens or creates a bleve index at path, analyzed with stemmerLanguage.
// An empty path creates an in-memory index (used by tests). A corrupted
// on-disk index is detected, cleared, and recreated rather than left to
// fail every later operation.
func Open(path, stemmerLanguage string) (*Index, error) {
	indexMapping, err := schema.BuildMapping(stemmerLanguage)
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeOpenIndex, "failed to build index mapping", err)
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
		if err != nil {
			return nil, raerrors.New(raerrors.ErrCodeOpenIndex, "failed to create in-memory index", err)
		}
		return &Index{bleve: idx}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, raerrors.IOError("failed to create index parent directory", err)
	}

	if validErr := validateIndexIntegrity(path); validErr != nil {
		slog.Warn("index corrupted, clearing", "path", path, "error", validErr)
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, raerrors.New(raerrors.ErrCodeCorruptIndex, "index corrupted and cannot be cleared", removeErr)
		}
	}

	idx, err = bleve.Open(path)
	switch {
	case err == bleve.ErrorIndexPathDoesNotExist:
		idx, err = bleve.New(path, indexMapping)
	case err != nil && isCorruptionError(err):
		slog.Warn("index open failed with corruption, recreating", "path", path, "error", err)
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, raerrors.New(raerrors.ErrCodeCorruptIndex, "index corrupted and cannot be cleared", removeErr)
		}
		idx, err = bleve.New(path, indexMapping)
	}
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeOpenIndex, "failed to open or create index", err)
	}

	return &Index{bleve: idx, path: path}, nil
}

// toDocument converts one chunk into its stored document shape.
func toDocument(tree, path string, mtime time.Time, tags []string, c chunk.Chunk) schema.ChunkDocument {
	parentID := ""
	if c.ParentID != nil {
		parentID = c.ParentID.String()
	}
	hierarchyJSON, _ := json.Marshal(c.Hierarchy)

	return schema.ChunkDocument{
		Type:           schema.DocType,
		ID:             c.ID.String(),
		Title:          c.Title,
		Tags:           strings.Join(tags, " "),
		Path:           path,
		PathComponents: strings.Join(strings.Split(path, "/"), " "),
		Tree:           tree,
		Body:           c.Body,
		Mtime:          mtime,
		DocID:          c.ID.Doc.String(),
		ParentID:       parentID,
		HierarchyRaw:   string(hierarchyJSON),
		Depth:          c.Depth,
		Position:       c.Position,
		ByteStart:      c.ByteStart,
		ByteEnd:        c.ByteEnd,
		SiblingCount:   c.SiblingCount,
	}
}

// AddChunks indexes every chunk of one file in a single batch. Reindexing a
// file should be preceded by DeleteByPath so stale chunks (sections that no
// longer exist) don't linger.
func (s *Index) AddChunks(tree, path string, mtime time.Time, tags []string, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return raerrors.New(raerrors.ErrCodeWrite, "index is closed", nil)
	}

	batch := s.bleve.NewBatch()
	for _, c := range chunks {
		doc := toDocument(tree, path, mtime, tags, c)
		if err := batch.Index(doc.ID, doc); err != nil {
			return raerrors.New(raerrors.ErrCodeWrite, "failed to stage chunk "+doc.ID, err)
		}
	}
	if err := s.bleve.Batch(batch); err != nil {
		return raerrors.New(raerrors.ErrCodeCommit, "failed to commit chunk batch", err)
	}
	return nil
}

// DeleteByPath removes every chunk belonging to tree:path: the document
// chunk itself (exact id match) and every section chunk (id prefix match
// on "tree:path#").
func (s *Index) DeleteByPath(tree, path string) error {
	docID := ids.NewDocId(tree, path).String()
	prefix := docID + "#"

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return raerrors.New(raerrors.ErrCodeWrite, "index is closed", nil)
	}

	exact := bleve.NewTermQuery(docID)
	exact.SetField(schema.FieldID)
	sections := bleve.NewPrefixQuery(prefix)
	sections.SetField(schema.FieldID)
	disjunction := bleve.NewDisjunctionQuery(exact, sections)

	matches, err := s.matchingIDs(disjunction)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	batch := s.bleve.NewBatch()
	for _, id := range matches {
		batch.Delete(id)
	}
	if err := s.bleve.Batch(batch); err != nil {
		return raerrors.New(raerrors.ErrCodeCommit, "failed to commit delete batch", err)
	}
	return nil
}

// matchingIDs returns every document ID matching q, bypassing relevance
// scoring since callers only need identity.
func (s *Index) matchingIDs(q query.Query) ([]string, error) {
	count, err := s.bleve.DocCount()
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to read doc count", err)
	}

	req := bleve.NewSearchRequestOptions(q, int(count)+1, 0, false)
	req.Fields = nil

	result, err := s.bleve.Search(req)
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to search for matching ids", err)
	}

	out := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		out[i] = hit.ID
	}
	return out, nil
}

// GetByID fetches one chunk's stored fields directly by id, bypassing
// relevance scoring. It returns ok=false if no chunk has that id.
func (s *Index) GetByID(id string) (doc schema.ChunkDocument, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return schema.ChunkDocument{}, false, raerrors.New(raerrors.ErrCodeInternal, "index is closed", nil)
	}

	term := bleve.NewTermQuery(id)
	term.SetField(schema.FieldID)

	req := bleve.NewSearchRequest(term)
	req.Size = 1
	req.Fields = []string{"*"}

	result, searchErr := s.bleve.Search(req)
	if searchErr != nil {
		return schema.ChunkDocument{}, false, raerrors.New(raerrors.ErrCodeInternal, "failed to look up chunk", searchErr)
	}
	if len(result.Hits) == 0 {
		return schema.ChunkDocument{}, false, nil
	}

	return documentFromFields(result.Hits[0].ID, result.Hits[0].Fields), true, nil
}

// ListAll returns every indexed chunk, for the listing/inspection surface.
func (s *Index) ListAll() ([]schema.ChunkDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "index is closed", nil)
	}

	count, err := s.bleve.DocCount()
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to read doc count", err)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count)+1, 0, false)
	req.Fields = []string{"*"}

	result, searchErr := s.bleve.Search(req)
	if searchErr != nil {
		return nil, raerrors.New(raerrors.ErrCodeInternal, "failed to list chunks", searchErr)
	}

	out := make([]schema.ChunkDocument, len(result.Hits))
	for i, hit := range result.Hits {
		out[i] = documentFromFields(hit.ID, hit.Fields)
	}
	return out, nil
}

// documentFromFields reconstructs a ChunkDocument from a search hit's
// stored field map. Mtime round-trips as an RFC 3339 string through bleve's
// stored-field JSON, matching the layout bleve itself writes for date
// fields.
func documentFromFields(id string, fields map[string]interface{}) schema.ChunkDocument {
	str := func(key string) string {
		v, _ := fields[key].(string)
		return v
	}
	num := func(key string) int {
		switch v := fields[key].(type) {
		case float64:
			return int(v)
		default:
			return 0
		}
	}

	doc := schema.ChunkDocument{
		Type:           schema.DocType,
		ID:             id,
		Title:          str(schema.FieldTitle),
		Tags:           str(schema.FieldTags),
		Path:           str(schema.FieldPath),
		PathComponents: str(schema.FieldPathComponents),
		Tree:           str(schema.FieldTree),
		Body:           str(schema.FieldBody),
		DocID:          str(schema.FieldDocID),
		ParentID:       str(schema.FieldParentID),
		HierarchyRaw:   str(schema.FieldHierarchy),
		Depth:          num(schema.FieldDepth),
		Position:       num(schema.FieldPosition),
		ByteStart:      num(schema.FieldByteStart),
		ByteEnd:        num(schema.FieldByteEnd),
		SiblingCount:   num(schema.FieldSiblingCount),
	}
	if mtime, err := time.Parse(time.RFC3339, str(schema.FieldMtime)); err == nil {
		doc.Mtime = mtime
	}
	return doc
}

// Close closes the underlying index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.bleve.Close()
}

// Bleve exposes the underlying bleve index for the query compiler and
// searcher, which need direct access to build and run search requests.
func (s *Index) Bleve() bleve.Index {
	return s.bleve
}

// DocCount returns the number of chunks currently stored.
func (s *Index) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, raerrors.New(raerrors.ErrCodeInternal, "index is closed", nil)
	}
	return s.bleve.DocCount()
}
