package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/config"
	"github.com/Aman-CERP/ra/internal/output"
	"github.com/Aman-CERP/ra/internal/schema"
)

func newLsCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:       "ls [trees|docs|chunks]",
		Short:     "List configured trees, indexed documents, or indexed chunks",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"trees", "docs", "chunks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "docs"
			if len(args) == 1 {
				what = args[0]
			}
			return runLs(cmd, what, long)
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show extra detail per entry")

	return cmd
}

func runLs(cmd *cobra.Command, what string, long bool) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	w := output.New(cmd.OutOrStdout())

	if what == "trees" {
		cfg, err := config.Load(root)
		if err != nil {
			return err
		}
		return lsTrees(w, cfg, long)
	}

	s, _, cleanup, err := openReader(root)
	if err != nil {
		return err
	}
	defer cleanup()

	chunks, err := s.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	switch what {
	case "docs":
		return lsDocs(w, chunks, long)
	case "chunks":
		return lsChunks(w, chunks, long)
	default:
		return fmt.Errorf("unknown ls target %q (expected trees, docs, or chunks)", what)
	}
}

func lsTrees(w *output.Writer, cfg *config.Config, long bool) error {
	if len(cfg.Trees) == 0 {
		w.Status("", "no trees configured")
		return nil
	}
	for _, t := range cfg.Trees {
		scope := "local"
		if t.IsGlobal {
			scope = "global"
		}
		w.Statusf("", "%s (%s) -> %s", t.Name, scope, t.Path)
		if long {
			for _, p := range t.Include {
				w.Status("", "  + "+p)
			}
			for _, p := range t.Exclude {
				w.Status("", "  - "+p)
			}
		}
	}
	return nil
}

type docInfo struct {
	tree, path, title string
	chunkCount        int
	totalSize         int
}

func lsDocs(w *output.Writer, chunks []schema.ChunkDocument, long bool) error {
	index := make(map[string]int)
	var docs []docInfo
	for _, c := range chunks {
		key := c.Tree + ":" + c.Path
		i, ok := index[key]
		if !ok {
			index[key] = len(docs)
			docs = append(docs, docInfo{tree: c.Tree, path: c.Path})
			i = len(docs) - 1
		}
		docs[i].chunkCount++
		docs[i].totalSize += len(c.Body)
		if c.ParentID == "" {
			docs[i].title = c.Title
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].tree != docs[j].tree {
			return docs[i].tree < docs[j].tree
		}
		return docs[i].path < docs[j].path
	})

	if len(docs) == 0 {
		w.Status("", "no documents indexed")
		return nil
	}

	for _, d := range docs {
		w.Statusf("", "%s:%s — %s", d.tree, d.path, d.title)
		if long {
			w.Statusf("", "  %d chunks, %d chars", d.chunkCount, d.totalSize)
		}
	}
	return nil
}

func lsChunks(w *output.Writer, chunks []schema.ChunkDocument, long bool) error {
	if len(chunks) == 0 {
		w.Status("", "no chunks indexed")
		return nil
	}
	for _, c := range chunks {
		w.Statusf("", "%s — %s", c.ID, c.Title)
		if long {
			w.Statusf("", "  %d chars", len(c.Body))
		}
	}
	return nil
}
