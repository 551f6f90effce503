package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/config"
	"github.com/Aman-CERP/ra/internal/output"
	"github.com/Aman-CERP/ra/pkg/indexer"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or incrementally update the search index",
		Long: `Discovers files under every configured tree, diffs them against the
last run's manifest, and (re)indexes whatever changed. Run it again any
time a document is added, edited, or removed — only the delta is
reprocessed unless the configuration itself changed, which forces a full
rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd)
		},
	}

	return cmd
}

func runIndex(cmd *cobra.Command) error {
	w := output.New(cmd.OutOrStdout())

	root, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	if len(cfg.Trees) == 0 {
		w.Warning("no trees configured; nothing to index")
		w.Status("", "add an entry under 'trees:' in .ra.yaml and re-run")
		return nil
	}

	ix, err := indexer.Open(root, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	results, err := ix.Run(cmd.Context())
	if err != nil {
		for _, r := range results {
			w.Statusf("", "%s: +%d ~%d -%d", r.Tree, r.Added, r.Modified, r.Removed)
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	var totalChunks int
	for _, r := range results {
		w.Successf("%s: +%d added, ~%d modified, -%d removed (%d chunks)", r.Tree, r.Added, r.Modified, r.Removed, r.ChunksTotal)
		totalChunks += r.ChunksTotal
	}

	w.Newline()
	w.Status("", fmt.Sprintf("done (%d chunks written this run)", totalChunks))
	return nil
}
