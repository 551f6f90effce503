package cmd

import (
	"os"

	"github.com/Aman-CERP/ra/internal/analyzer"
	"github.com/Aman-CERP/ra/internal/config"
	"github.com/Aman-CERP/ra/internal/confighash"
	"github.com/Aman-CERP/ra/internal/store"
	"github.com/Aman-CERP/ra/pkg/searcher"
)

// projectRoot resolves the project root the same way every subcommand does:
// walk up from the working directory looking for .git or a .ra.yaml/.ra.yml.
func projectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.FindProjectRoot(cwd)
}

// openReader loads a project's config and opens its index read-only behind
// a Searcher, for every command that only queries an existing index.
func openReader(root string) (*searcher.Searcher, *config.Config, func(), error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, nil, err
	}

	idxDir := confighash.IndexDir(root)
	idx, err := store.Open(idxDir, cfg.Search.Stemmer)
	if err != nil {
		return nil, nil, nil, err
	}

	az, err := analyzer.New(cfg.Search.Stemmer)
	if err != nil {
		_ = idx.Close()
		return nil, nil, nil, err
	}

	s := searcher.New(idx, cfg, az)
	cleanup := func() { _ = idx.Close() }
	return s, cfg, cleanup, nil
}

// openIndexReadOnly opens the bleve index directly, for callers (status)
// that only need document counts rather than a full Searcher.
func openIndexReadOnly(idxDir, stemmer string) (*store.Index, error) {
	return store.Open(idxDir, stemmer)
}
