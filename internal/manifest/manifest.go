// Package manifest tracks which files have been indexed and their
// modification times, enabling incremental reindexing: only files added,
// modified, or removed since the last run need to be touched.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
)

// Entry records one indexed file's identity and modification time.
type Entry struct {
	Tree  string `json:"tree"`
	Path  string `json:"path"`
	Mtime int64  `json:"mtime"`
}

// Manifest maps an absolute file path to its Entry.
type Manifest struct {
	Entries map[string]Entry `json:"entries"`
}

// New creates an empty manifest.
func New() *Manifest {
	return &Manifest{Entries: make(map[string]Entry)}
}

// Load reads a manifest from path. A missing file yields an empty manifest;
// a malformed file is reported as an error.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, raerrors.IOError("failed to read manifest", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, raerrors.New(raerrors.ErrCodeIO, "invalid manifest: "+err.Error(), err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return &m, nil
}

// Save writes the manifest to path as pretty-printed JSON, creating parent
// directories as needed and writing atomically via a temp file + rename.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return raerrors.IOError("failed to create manifest directory", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return raerrors.New(raerrors.ErrCodeIO, "failed to serialize manifest", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return raerrors.IOError("failed to write manifest", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return raerrors.IOError("failed to finalize manifest write", err)
	}
	return nil
}

// Insert adds or overwrites the entry for absPath.
func (m *Manifest) Insert(absPath string, entry Entry) {
	m.Entries[absPath] = entry
}

// Remove deletes absPath's entry, if any.
func (m *Manifest) Remove(absPath string) {
	delete(m.Entries, absPath)
}

// Get returns the entry for absPath, if present.
func (m *Manifest) Get(absPath string) (Entry, bool) {
	e, ok := m.Entries[absPath]
	return e, ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// IsEmpty reports whether the manifest has no entries.
func (m *Manifest) IsEmpty() bool {
	return len(m.Entries) == 0
}
