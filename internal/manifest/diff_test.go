package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeFile(tree, rel, abs string, secs int64) DiscoveredFile {
	return DiscoveredFile{Tree: tree, RelPath: rel, AbsPath: abs, Mtime: secs}
}

func makeEntry(tree, rel string, secs int64) Entry {
	return Entry{Tree: tree, Path: rel, Mtime: secs}
}

func TestDiffDetectsAddedFiles(t *testing.T) {
	m := New()
	discovered := []DiscoveredFile{makeFile("docs", "new.md", "/docs/new.md", 1000)}

	diff := Compute(m, discovered)
	assert.Len(t, diff.Added, 1)
	assert.Empty(t, diff.Modified)
	assert.Empty(t, diff.Removed)
}

func TestDiffDetectsModifiedFiles(t *testing.T) {
	m := New()
	m.Insert("/docs/file.md", makeEntry("docs", "file.md", 1000))

	discovered := []DiscoveredFile{makeFile("docs", "file.md", "/docs/file.md", 2000)}

	diff := Compute(m, discovered)
	assert.Empty(t, diff.Added)
	assert.Len(t, diff.Modified, 1)
	assert.Empty(t, diff.Removed)
}

func TestDiffDetectsRemovedFiles(t *testing.T) {
	m := New()
	m.Insert("/docs/old.md", makeEntry("docs", "old.md", 1000))

	diff := Compute(m, nil)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Modified)
	assert.Len(t, diff.Removed, 1)
}

func TestDiffIgnoresUnchangedFiles(t *testing.T) {
	m := New()
	m.Insert("/docs/same.md", makeEntry("docs", "same.md", 1000))

	discovered := []DiscoveredFile{makeFile("docs", "same.md", "/docs/same.md", 1000)}

	diff := Compute(m, discovered)
	assert.True(t, diff.IsEmpty())
}

func TestDiffHandlesMixedChanges(t *testing.T) {
	m := New()
	m.Insert("/docs/unchanged.md", makeEntry("docs", "unchanged.md", 1000))
	m.Insert("/docs/modified.md", makeEntry("docs", "modified.md", 1000))
	m.Insert("/docs/removed.md", makeEntry("docs", "removed.md", 1000))

	discovered := []DiscoveredFile{
		makeFile("docs", "unchanged.md", "/docs/unchanged.md", 1000),
		makeFile("docs", "modified.md", "/docs/modified.md", 2000),
		makeFile("docs", "added.md", "/docs/added.md", 3000),
	}

	diff := Compute(m, discovered)
	assert.Len(t, diff.Added, 1)
	assert.Len(t, diff.Modified, 1)
	assert.Len(t, diff.Removed, 1)
	assert.Equal(t, 3, diff.TotalChanges())
}

func TestApplyUpdatesManifest(t *testing.T) {
	m := New()
	m.Insert("/docs/old.md", makeEntry("docs", "old.md", 1000))

	diff := Diff{
		Added:   []DiscoveredFile{makeFile("docs", "new.md", "/docs/new.md", 2000)},
		Removed: []string{"/docs/old.md"},
	}

	Apply(m, diff)

	assert.Equal(t, 1, m.Len())
	_, ok := m.Get("/docs/old.md")
	assert.False(t, ok)
	_, ok = m.Get("/docs/new.md")
	assert.True(t, ok)
}

func TestFilesToIndexCombinesAddedAndModified(t *testing.T) {
	diff := Diff{
		Added:    []DiscoveredFile{makeFile("docs", "a.md", "/docs/a.md", 1000)},
		Modified: []DiscoveredFile{makeFile("docs", "b.md", "/docs/b.md", 2000)},
		Removed:  []string{"/docs/c.md"},
	}

	assert.Len(t, diff.FilesToIndex(), 2)
}
