package manifest

import "github.com/Aman-CERP/ra/internal/scanner"

// DiscoveredFile pairs a scanned file with the tree it was found under.
type DiscoveredFile struct {
	Tree    string
	RelPath string
	AbsPath string
	Mtime   int64
}

// FromFileInfo builds a DiscoveredFile from a scanner result.
func FromFileInfo(tree string, f *scanner.FileInfo) DiscoveredFile {
	return DiscoveredFile{
		Tree:    tree,
		RelPath: f.Path,
		AbsPath: f.AbsPath,
		Mtime:   f.ModTime.Unix(),
	}
}

// Diff is the result of comparing discovered files against a manifest.
type Diff struct {
	Added    []DiscoveredFile
	Modified []DiscoveredFile
	Removed  []string // absolute paths
}

// IsEmpty reports whether the diff has no changes.
func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// TotalChanges returns the number of files touched by this diff.
func (d Diff) TotalChanges() int {
	return len(d.Added) + len(d.Modified) + len(d.Removed)
}

// FilesToIndex returns every file that needs (re)indexing: added + modified.
func (d Diff) FilesToIndex() []DiscoveredFile {
	out := make([]DiscoveredFile, 0, len(d.Added)+len(d.Modified))
	out = append(out, d.Added...)
	out = append(out, d.Modified...)
	return out
}

// Compute diffs discovered against m: a file is added if m has no entry for
// its absolute path, modified if the entry exists with a different
// second-resolution mtime, and removed if m has an entry no discovered file
// matches.
func Compute(m *Manifest, discovered []DiscoveredFile) Diff {
	var diff Diff

	seen := make(map[string]struct{}, len(discovered))
	for _, f := range discovered {
		seen[f.AbsPath] = struct{}{}

		entry, ok := m.Get(f.AbsPath)
		if !ok {
			diff.Added = append(diff.Added, f)
			continue
		}
		if entry.Mtime != f.Mtime {
			diff.Modified = append(diff.Modified, f)
		}
	}

	for absPath := range m.Entries {
		if _, ok := seen[absPath]; !ok {
			diff.Removed = append(diff.Removed, absPath)
		}
	}

	return diff
}

// Apply updates m in place to reflect diff: removed paths are deleted, and
// every added/modified file gets a fresh entry.
func Apply(m *Manifest, diff Diff) {
	for _, path := range diff.Removed {
		m.Remove(path)
	}
	for _, f := range diff.FilesToIndex() {
		m.Insert(f.AbsPath, Entry{Tree: f.Tree, Path: f.RelPath, Mtime: f.Mtime})
	}
}
