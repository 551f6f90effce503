package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/config"
	"github.com/Aman-CERP/ra/internal/confighash"
	"github.com/Aman-CERP/ra/internal/output"
)

// statusInfo is the JSON shape for `ra status --json`.
type statusInfo struct {
	Root        string   `json:"root"`
	Trees       []string `json:"trees"`
	IndexStatus string   `json:"index_status"`
	DocCount    uint64   `json:"doc_count,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, trees, and index status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	info := statusInfo{Root: root, IndexStatus: confighash.DetectIndexStatus(root, cfg).Description()}
	for _, t := range cfg.Trees {
		info.Trees = append(info.Trees, t.Name)
	}
	info.Warnings = configWarnings(root, cfg)

	if info.IndexStatus != confighash.StatusMissing.Description() {
		idxDir := confighash.IndexDir(root)
		if n, err := docCount(idxDir, cfg.Search.Stemmer); err == nil {
			info.DocCount = n
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	w := output.New(cmd.OutOrStdout())
	w.Status("", fmt.Sprintf("Project: %s", info.Root))
	w.Newline()

	w.Status("", "Trees:")
	if len(info.Trees) == 0 {
		w.Status("", "  (none defined)")
	}
	for _, t := range info.Trees {
		w.Status("", "  "+t)
	}
	w.Newline()

	icon := "✅"
	if info.IndexStatus != "current" {
		icon = "⚠️"
	}
	w.Statusf(icon, "Index: %s (%d chunks)", info.IndexStatus, info.DocCount)

	for _, warning := range info.Warnings {
		w.Warning(warning)
	}

	return nil
}

// configWarnings surfaces soft configuration problems that Validate
// doesn't reject outright: an empty tree list, or a tree whose path
// doesn't exist on disk.
func configWarnings(root string, cfg *config.Config) []string {
	var warnings []string
	if len(cfg.Trees) == 0 {
		warnings = append(warnings, "no trees defined — add one under 'trees:' in .ra.yaml")
		return warnings
	}
	for _, t := range cfg.Trees {
		if !fileExists(filepath.Join(root, t.Path)) {
			warnings = append(warnings, fmt.Sprintf("tree %q points at %q, which does not exist", t.Name, t.Path))
		}
	}
	return warnings
}

func docCount(idxDir, stemmer string) (uint64, error) {
	idx, err := openIndexReadOnly(idxDir, stemmer)
	if err != nil {
		return 0, err
	}
	defer func() { _ = idx.Close() }()
	return idx.DocCount()
}
