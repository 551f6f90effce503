// Package schema defines the bleve index mapping and document shape shared
// by the index writer and the query compiler: which fields exist, how they
// are analyzed, and the relevance boost each carries.
package schema

import (
	"encoding/json"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// DocType is the bleve document type name for every indexed chunk.
const DocType = "chunk"

const (
	FieldID             = "id"
	FieldTitle          = "title"
	FieldTags           = "tags"
	FieldPath           = "path"
	FieldPathComponents = "path_components"
	FieldTree           = "tree"
	FieldBody           = "body"
	FieldMtime          = "mtime"

	// Structural fields below are stored but never analyzed: the searcher's
	// hierarchical aggregation phase needs each candidate's place in its
	// document's chunk tree, not just its content.
	FieldDocID        = "doc_id"
	FieldParentID     = "parent_id"
	FieldHierarchy    = "hierarchy_json"
	FieldDepth        = "depth"
	FieldPosition     = "position"
	FieldByteStart    = "byte_start"
	FieldByteEnd      = "byte_end"
	FieldSiblingCount = "sibling_count"
)

// FieldBoosts mirrors the relevance weight given to each analyzed field
// when the query compiler builds per-field disjunctions.
var FieldBoosts = map[string]float64{
	FieldTitle:          3.0,
	FieldTags:           2.5,
	FieldPath:           2.0,
	FieldPathComponents: 2.0,
	FieldBody:           1.0,
}

// stemAnalyzerName is the custom analyzer registered for every stemmed text
// field. Its token filter chain is: tokenize -> lowercase -> length-filter
// (drop >40 bytes) -> Snowball stem for the configured language.
const stemAnalyzerName = "ra_stem"
const stemFilterName = "ra_stem_filter"
const maxTokenBytes = 40

// ChunkDocument is the bleve document shape for one indexed chunk.
type ChunkDocument struct {
	Type           string    `json:"type"`
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Tags           string    `json:"tags"`
	Path           string    `json:"path"`
	PathComponents string    `json:"path_components"`
	Tree           string    `json:"tree"`
	Body           string    `json:"body"`
	Mtime          time.Time `json:"mtime"`

	// Structural metadata, stored verbatim and never analyzed: the
	// searcher's hierarchical aggregation phase walks a document's chunk
	// tree using these, not the scored text fields above.
	DocID        string `json:"doc_id"`
	ParentID     string `json:"parent_id"`
	HierarchyRaw string `json:"hierarchy_json"`
	Depth        int    `json:"depth"`
	Position     int    `json:"position"`
	ByteStart    int    `json:"byte_start"`
	ByteEnd      int    `json:"byte_end"`
	SiblingCount int    `json:"sibling_count"`
}

// Hierarchy decodes the document's JSON-encoded ancestor-title path.
func (d ChunkDocument) Hierarchy() []string {
	if d.HierarchyRaw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(d.HierarchyRaw), &out); err != nil {
		return nil
	}
	return out
}

// BuildMapping constructs the index mapping for stemmerLanguage (as
// recognized by internal/analyzer). Each configured tree's index uses one
// mapping, built once at index-open time.
func BuildMapping(stemmerLanguage string) (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	im.TypeField = "type"
	im.DefaultType = DocType
	im.DefaultAnalyzer = stemAnalyzerName

	if err := im.AddCustomTokenFilter(stemFilterName, map[string]interface{}{
		"type": stemFilterTypeName,
		"lang": stemmerLanguage,
	}); err != nil {
		return nil, err
	}

	// length filter bounds tokens to [1, maxTokenBytes] bytes, dropping the
	// machine-generated-noise tail (hashes, base64 blobs) before stemming.
	lengthFilterName := length.Name + "_ra"
	if err := im.AddCustomTokenFilter(lengthFilterName, map[string]interface{}{
		"type": length.Name,
		"min":  1.0,
		"max":  float64(maxTokenBytes),
	}); err != nil {
		return nil, err
	}

	if err := im.AddCustomAnalyzer(stemAnalyzerName, map[string]interface{}{
		"type":      "custom",
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			lengthFilterName,
			stemFilterName,
		},
	}); err != nil {
		return nil, err
	}

	stemmedText := mapping.NewTextFieldMapping()
	stemmedText.Analyzer = stemAnalyzerName
	stemmedText.Store = true
	stemmedText.IncludeTermVectors = true

	unstoredText := mapping.NewTextFieldMapping()
	unstoredText.Analyzer = stemAnalyzerName
	unstoredText.Store = false
	unstoredText.IncludeTermVectors = true

	rawKeyword := mapping.NewKeywordFieldMapping()
	rawKeyword.Store = true

	treeKeyword := mapping.NewKeywordFieldMapping()
	treeKeyword.Store = true

	mtime := mapping.NewDateTimeFieldMapping()

	// structural carries stored-only metadata (doc id, parent id, hierarchy
	// JSON): never searched, so it stays out of the stem analyzer's reach.
	structural := mapping.NewKeywordFieldMapping()
	structural.Store = true
	structural.Index = false

	number := mapping.NewNumericFieldMapping()
	number.Store = true
	number.Index = false

	doc := mapping.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldID, rawKeyword)
	doc.AddFieldMappingsAt(FieldTitle, stemmedText)
	doc.AddFieldMappingsAt(FieldTags, stemmedText)
	doc.AddFieldMappingsAt(FieldPath, stemmedText)
	doc.AddFieldMappingsAt(FieldPathComponents, unstoredText)
	doc.AddFieldMappingsAt(FieldTree, treeKeyword)
	doc.AddFieldMappingsAt(FieldBody, stemmedText)
	doc.AddFieldMappingsAt(FieldMtime, mtime)
	doc.AddFieldMappingsAt(FieldDocID, structural)
	doc.AddFieldMappingsAt(FieldParentID, structural)
	doc.AddFieldMappingsAt(FieldHierarchy, structural)
	doc.AddFieldMappingsAt(FieldDepth, number)
	doc.AddFieldMappingsAt(FieldPosition, number)
	doc.AddFieldMappingsAt(FieldByteStart, number)
	doc.AddFieldMappingsAt(FieldByteEnd, number)
	doc.AddFieldMappingsAt(FieldSiblingCount, number)

	im.AddDocumentMapping(DocType, doc)

	return im, nil
}
