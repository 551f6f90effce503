package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/output"
	"github.com/Aman-CERP/ra/pkg/searcher"
)

func newSearchCmd() *cobra.Command {
	var (
		limit        int
		trees        []string
		verbose      int
		noAggregate  bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query> [query...]",
		Short: "Search the index and print matching sections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, limit, trees, verbose, noAggregate, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (0 uses the configured default)")
	cmd.Flags().StringSliceVar(&trees, "tree", nil, "Restrict results to these trees")
	cmd.Flags().CountVarP(&verbose, "verbose", "v", "Increase match-detail verbosity (-v, -vv)")
	cmd.Flags().BoolVar(&noAggregate, "no-aggregate", false, "Disable hierarchical section aggregation")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, queries []string, limit int, trees []string, verbose int, noAggregate, jsonOutput bool) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}

	s, cfg, cleanup, err := openReader(root)
	if err != nil {
		return err
	}
	defer cleanup()

	params := searcher.DefaultSearchParams()
	if limit > 0 {
		params.Limit = limit
	} else {
		params.Limit = cfg.DefaultLimit
	}
	params.Trees = trees
	params.Verbosity = verbose
	params.DisableAggregation = noAggregate
	if cfg.Search.Fuzzy {
		params.FuzzyDistance = cfg.Search.FuzzyDistance
	}

	queryStr := combineQueries(queries)

	results, _, err := s.Search(queryStr, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printResults(cmd, results)
	return nil
}

// combineQueries joins multiple query arguments into one query-language
// expression: a single query is used as-is, several are OR'd together.
func combineQueries(queries []string) string {
	if len(queries) == 1 {
		return queries[0]
	}
	parts := make([]string, len(queries))
	for i, q := range queries {
		parts[i] = "(" + q + ")"
	}
	return strings.Join(parts, " OR ")
}

func printResults(cmd *cobra.Command, results []searcher.Result) {
	w := output.New(cmd.OutOrStdout())

	if len(results) == 0 {
		w.Status("", "no results")
		return
	}

	for _, r := range results {
		breadcrumb := strings.Join(r.Hierarchy, " > ")
		w.Statusf("", "%s  %s  (score %.3f)", r.ID, breadcrumb, r.Score)
		if r.Snippet != "" {
			w.Status("", "  "+r.Snippet)
		}
		w.Newline()
	}
}
