package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/chunk"
	"github.com/Aman-CERP/ra/internal/frontmatter"
	"github.com/Aman-CERP/ra/internal/output"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how ra parses and chunks a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, file string) error {
	ext := strings.ToLower(filepath.Ext(file))
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("unsupported file type: %s (expected .md or .markdown)", ext)
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	fm, body := frontmatter.Parse(string(raw))
	title := filepath.Base(file)
	title = strings.TrimSuffix(title, filepath.Ext(title))
	var tags []string
	if fm != nil {
		if fm.Title != "" {
			title = fm.Title
		}
		tags = fm.Tags
	}

	tree := chunk.Build(body, "inspect", file, title)
	chunks := tree.Extract()

	w := output.New(cmd.OutOrStdout())
	w.Statusf("", "--- %s ---", file)
	w.Status("", title)
	if len(tags) > 0 {
		w.Status("", "tags: "+strings.Join(tags, ", "))
	}
	w.Statusf("", "hierarchical chunking -> %d nodes, %d chunks", tree.NodeCount(), len(chunks))
	w.Newline()

	for _, c := range chunks {
		label := fmt.Sprintf("%s (depth %d)", c.ID.String(), c.Depth)
		if c.ParentID == nil {
			label = fmt.Sprintf("%s (document)", c.ID.String())
		}
		w.Statusf("", "--- %s ---", label)
		w.Status("", c.Breadcrumb())
		w.Statusf("", "%d chars", len(c.Body))
		w.Code(preview(c.Body, 200))
	}

	return nil
}

// preview returns the first line of content, truncated to maxLen.
func preview(body string, maxLen int) string {
	first := body
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		first = body[:idx]
	}
	if len(first) > maxLen {
		first = first[:maxLen] + "..."
	}
	return first
}
