// Package indexer orchestrates index-time work: discover files under each
// configured tree, diff them against the previous run's manifest, parse
// frontmatter and build chunk trees for changed files, and write the result
// into the store — all under a writer lock so only one indexing run touches
// an index at a time.
package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aman-CERP/ra/internal/chunk"
	"github.com/Aman-CERP/ra/internal/config"
	"github.com/Aman-CERP/ra/internal/confighash"
	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/frontmatter"
	"github.com/Aman-CERP/ra/internal/manifest"
	"github.com/Aman-CERP/ra/internal/scanner"
	"github.com/Aman-CERP/ra/internal/store"
	"github.com/Aman-CERP/ra/internal/writerlock"
)

// Result summarizes one tree's pass through Run.
type Result struct {
	Tree        string
	Added       int
	Modified    int
	Removed     int
	ChunksTotal int
}

// Indexer runs the discover -> diff -> chunk -> write pipeline for one
// project's configured trees against a single shared store.
type Indexer struct {
	cfg     *config.Config
	root    string
	idxDir  string
	scanner *scanner.Scanner
	idx     *store.Index
}

// Open prepares an Indexer for the project rooted at root, rebuilding the
// on-disk index from scratch if the stored config hash no longer matches
// cfg (a schema, stemmer, or chunk-size change invalidates everything
// already indexed).
func Open(root string, cfg *config.Config) (*Indexer, error) {
	sc, err := scanner.New()
	if err != nil {
		return nil, err
	}

	idxDir := confighash.IndexDir(root)
	if confighash.DetectIndexStatus(root, cfg).NeedsRebuild() {
		if err := os.RemoveAll(idxDir); err != nil && !os.IsNotExist(err) {
			return nil, raerrors.IOError("failed to clear stale index", err)
		}
	}

	idx, err := store.Open(idxDir, cfg.Search.Stemmer)
	if err != nil {
		return nil, err
	}

	if err := confighash.WriteConfigHash(idxDir, confighash.ComputeConfigHash(cfg)); err != nil {
		_ = idx.Close()
		return nil, err
	}

	return &Indexer{cfg: cfg, root: root, idxDir: idxDir, scanner: sc, idx: idx}, nil
}

// Close releases the underlying index handle.
func (ix *Indexer) Close() error {
	return ix.idx.Close()
}

// Index returns the underlying store, for callers (searches, status
// reporting) that need direct access once indexing has run.
func (ix *Indexer) Index() *store.Index {
	return ix.idx
}

// Run indexes every configured tree, holding the writer lock for the whole
// pass and persisting the manifest once all trees have been processed (or
// as far as they got, on error).
func (ix *Indexer) Run(ctx context.Context) ([]Result, error) {
	lock := writerlock.New(ix.idxDir)
	if err := lock.TryLock(); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	manifestPath := confighash.ManifestPath(ix.idxDir)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(ix.cfg.Trees))
	for _, tree := range ix.cfg.Trees {
		res, err := ix.runTree(ctx, tree, m)
		results = append(results, res)
		if err != nil {
			_ = m.Save(manifestPath)
			return results, err
		}
	}

	if err := m.Save(manifestPath); err != nil {
		return results, err
	}
	return results, nil
}

// runTree discovers, diffs, and (re)indexes one tree, updating m in place.
func (ix *Indexer) runTree(ctx context.Context, tree config.Tree, m *manifest.Manifest) (Result, error) {
	res := Result{Tree: tree.Name}

	absRoot, err := filepath.Abs(filepath.Join(ix.root, tree.Path))
	if err != nil {
		return res, raerrors.PathError(raerrors.ErrCodePathResolution, "failed to resolve tree path for "+tree.Name, err)
	}

	files, err := ix.scanner.DiscoverAll(ctx, tree.Name, absRoot, tree.Include, tree.EffectiveExclude())
	if err != nil {
		return res, err
	}

	discovered := make([]manifest.DiscoveredFile, 0, len(files))
	for _, f := range files {
		discovered = append(discovered, manifest.FromFileInfo(tree.Name, f))
	}

	// Diffing against only this tree's own slice of the manifest keeps one
	// tree's files from ever being mistaken for another's additions or
	// removals.
	treeManifest := manifestForTree(m, tree.Name)
	diff := manifest.Compute(treeManifest, discovered)
	res.Added, res.Modified, res.Removed = len(diff.Added), len(diff.Modified), len(diff.Removed)

	for _, absPath := range diff.Removed {
		entry, ok := treeManifest.Get(absPath)
		if !ok {
			continue
		}
		if err := ix.idx.DeleteByPath(tree.Name, entry.Path); err != nil {
			return res, err
		}
	}

	for _, f := range diff.FilesToIndex() {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		n, err := ix.indexFile(tree, f)
		if err != nil {
			return res, err
		}
		res.ChunksTotal += n
	}

	manifest.Apply(m, diff)
	return res, nil
}

// indexFile re-chunks and re-writes one changed file, replacing whatever
// chunks it had before.
func (ix *Indexer) indexFile(tree config.Tree, f manifest.DiscoveredFile) (int, error) {
	raw, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return 0, raerrors.New(raerrors.ErrCodeReadFile, "failed to read "+f.AbsPath, err)
	}

	fm, body := frontmatter.Parse(string(raw))
	title := titleFor(fm, body, f.RelPath)
	var tags []string
	if fm != nil {
		tags = fm.Tags
	}

	if err := ix.idx.DeleteByPath(tree.Name, f.RelPath); err != nil {
		return 0, err
	}

	chunks := chunk.Build(body, tree.Name, f.RelPath, title).Extract()
	if err := ix.idx.AddChunks(tree.Name, f.RelPath, time.Unix(f.Mtime, 0), tags, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// titleFor picks a document's display title: frontmatter wins, then a
// leading H1, then the bare filename.
func titleFor(fm *frontmatter.Frontmatter, body, relPath string) string {
	if fm != nil && fm.Title != "" {
		return fm.Title
	}
	if h1 := leadingH1(body); h1 != "" {
		return h1
	}
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// leadingH1 returns the text of the document's first non-blank line if it's
// an ATX H1 ("# ..."), otherwise "".
func leadingH1(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if after, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return ""
}

// manifestForTree returns a manifest containing only m's entries belonging
// to tree.
func manifestForTree(m *manifest.Manifest, tree string) *manifest.Manifest {
	sub := manifest.New()
	for absPath, entry := range m.Entries {
		if entry.Tree == tree {
			sub.Insert(absPath, entry)
		}
	}
	return sub
}
