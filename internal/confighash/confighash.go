// Package confighash computes a version fingerprint for the settings that
// affect indexing (schema version, stemmer language, chunk size) and tracks
// where an index lives on disk relative to a project's config file.
package confighash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Aman-CERP/ra/internal/config"
	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// SchemaVersion is the current index schema version. Bump it whenever field
// definitions or analysis semantics change in a way that invalidates
// existing indices.
const SchemaVersion = 1

const (
	raDir      = ".ra"
	indexDir   = "index"
	manifestFn = "manifest.json"
	hashFn     = "config_hash"
)

// IndexingConfig holds the subset of configuration that affects indexing
// output. Any change to these fields requires a full reindex.
type IndexingConfig struct {
	SchemaVersion int
	Stemmer       string
	MaxChunkSize  int
}

// FromConfig extracts the indexing-relevant settings from cfg.
func FromConfig(cfg *config.Config) IndexingConfig {
	return IndexingConfig{
		SchemaVersion: SchemaVersion,
		Stemmer:       cfg.Search.Stemmer,
		MaxChunkSize:  cfg.MaxChunkSize,
	}
}

// HashString returns the hex-encoded hash of ic, stored alongside the index
// and compared on subsequent opens to detect when a rebuild is needed.
//
// This substitutes xxhash64 for SipHash24: the hash has no cryptographic
// requirement, only stability and low collision risk, and xxhash is the
// hasher available in this module's dependency set.
func (ic IndexingConfig) HashString() string {
	data := fmt.Sprintf("%d|%s|%d", ic.SchemaVersion, ic.Stemmer, ic.MaxChunkSize)
	return fmt.Sprintf("%016x", xxhash.Sum64String(data))
}

// ComputeConfigHash extracts cfg's indexing-relevant settings and hashes them.
func ComputeConfigHash(cfg *config.Config) string {
	return FromConfig(cfg).HashString()
}

// IndexDir returns the index directory for a config rooted at configRoot.
// configRoot is normally the directory containing the winning .ra.yaml /
// .ra.yml file; if a caller passes the config file path itself, it is
// normalized to its parent directory.
func IndexDir(configRoot string) string {
	root := configRoot
	base := filepath.Base(configRoot)
	if base == ".ra.yaml" || base == ".ra.yml" {
		root = filepath.Dir(configRoot)
	}
	return filepath.Join(root, raDir, indexDir)
}

// ManifestPath returns the manifest file path for an index directory.
func ManifestPath(idxDir string) string {
	return filepath.Join(filepath.Dir(idxDir), manifestFn)
}

// ConfigHashPath returns the config-hash file path for an index directory.
func ConfigHashPath(idxDir string) string {
	return filepath.Join(idxDir, hashFn)
}

// ReadStoredHash reads the hash recorded in idxDir, trimming surrounding
// whitespace. It returns false if no hash file exists or it cannot be read.
func ReadStoredHash(idxDir string) (string, bool) {
	data, err := os.ReadFile(ConfigHashPath(idxDir))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// WriteConfigHash records hash in idxDir, creating the directory if needed.
func WriteConfigHash(idxDir string, hash string) error {
	if err := os.MkdirAll(idxDir, 0o755); err != nil {
		return raerrors.IOError("failed to create index directory", err)
	}
	if err := os.WriteFile(ConfigHashPath(idxDir), []byte(hash), 0o644); err != nil {
		return raerrors.IOError("failed to write config hash", err)
	}
	return nil
}

// indexExists reports whether a bleve index's marker file is present in
// idxDir, meaning bleve has successfully opened or created it before.
func indexExists(idxDir string) bool {
	_, err := os.Stat(filepath.Join(idxDir, "index_meta.json"))
	return err == nil
}
