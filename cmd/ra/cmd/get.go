package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/ids"
	"github.com/Aman-CERP/ra/internal/output"
	"github.com/Aman-CERP/ra/internal/schema"
)

func newGetCmd() *cobra.Command {
	var (
		fullDocument bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a chunk or document by ID (tree:path#slug or tree:path)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], fullDocument, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&fullDocument, "full-document", false, "Retrieve every chunk of the document instead of just the addressed one")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runGet(cmd *cobra.Command, rawID string, fullDocument, jsonOutput bool) error {
	chunkID, err := ids.ParseChunkId(rawID)
	if err != nil {
		return fmt.Errorf("invalid ID format: %s (expected tree:path#slug or tree:path)", rawID)
	}

	root, err := projectRoot()
	if err != nil {
		return err
	}

	s, _, cleanup, err := openReader(root)
	if err != nil {
		return err
	}
	defer cleanup()

	var docs []schema.ChunkDocument
	if fullDocument || chunkID.IsDocument() {
		all, err := s.ListAll()
		if err != nil {
			return fmt.Errorf("failed to list chunks: %w", err)
		}
		for _, d := range all {
			if d.Tree == chunkID.Doc.Tree && d.Path == chunkID.Doc.Path {
				docs = append(docs, d)
			}
		}
	} else {
		doc, ok, err := s.GetByID(rawID)
		if err != nil {
			return fmt.Errorf("failed to retrieve chunk: %w", err)
		}
		if ok {
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 {
		return fmt.Errorf("not found: %s", rawID)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	w := output.New(cmd.OutOrStdout())
	for _, d := range docs {
		w.Statusf("", "%s  %s", d.ID, strings.Join(d.Hierarchy(), " > "))
		w.Code(d.Body)
	}
	return nil
}
