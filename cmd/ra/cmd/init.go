package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ra/internal/config"
	"github.com/Aman-CERP/ra/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .ra.yaml configuration file in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .ra.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	w := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configPath := filepath.Join(cwd, ".ra.yaml")
	if fileExists(configPath) && !force {
		w.Error(fmt.Sprintf("configuration file already exists: %s", configPath))
		w.Status("", "use --force to overwrite")
		return fmt.Errorf("configuration already exists")
	}

	cfg := config.NewConfig()
	cfg.Trees = []config.Tree{
		{Name: "docs", Path: "docs", Include: []string{"**/*.md"}},
	}

	if err := cfg.WriteYAML(configPath); err != nil {
		return err
	}

	w.Success(fmt.Sprintf("Created %s", configPath))

	if err := updateGitignore(cwd); err != nil {
		w.Warning(fmt.Sprintf("could not update .gitignore: %s", err))
	}

	return nil
}

// updateGitignore adds .ra/ to an existing .gitignore if it isn't already
// listed there.
func updateGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")
	if !fileExists(gitignorePath) {
		return nil
	}

	contents, err := os.ReadFile(gitignorePath)
	if err != nil {
		return err
	}

	const pattern = ".ra/"
	for _, line := range strings.Split(string(contents), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed == pattern || trimmed == ".ra" {
			return nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	prefix := ""
	if len(contents) > 0 && contents[len(contents)-1] != '\n' {
		prefix = "\n"
	}
	_, err = fmt.Fprintf(f, "%s%s\n", prefix, pattern)
	return err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
