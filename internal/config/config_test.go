package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 1.5, cfg.LocalBoost)
	assert.Equal(t, 2000, cfg.MaxChunkSize)
	assert.True(t, cfg.Search.Fuzzy)
	assert.Equal(t, 1, cfg.Search.FuzzyDistance)
	assert.Equal(t, "english", cfg.Search.Stemmer)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesProjectFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
default_limit: 25
search:
  stemmer: german
trees:
  - name: docs
    path: ./docs
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ra.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.DefaultLimit)
	assert.Equal(t, "german", cfg.Search.Stemmer)
	require.Len(t, cfg.Trees, 1)
	assert.Equal(t, "docs", cfg.Trees[0].Name)
}

func TestValidateRejectsDuplicateTreeNames(t *testing.T) {
	cfg := NewConfig()
	cfg.Trees = []Tree{{Name: "docs"}, {Name: "docs"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateRejectsColonInTreeName(t *testing.T) {
	cfg := NewConfig()
	cfg.Trees = []Tree{{Name: "a:b"}}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestTreeByName(t *testing.T) {
	cfg := NewConfig()
	cfg.Trees = []Tree{{Name: "docs", Path: "/tmp/docs"}}

	tree, ok := cfg.TreeByName("docs")
	require.True(t, ok)
	assert.Equal(t, "/tmp/docs", tree.Path)

	_, ok = cfg.TreeByName("missing")
	assert.False(t, ok)
}

func TestEffectiveExcludeIncludesDefaults(t *testing.T) {
	tree := Tree{Name: "docs", Exclude: []string{"**/drafts/**"}}
	exclude := tree.EffectiveExclude()
	assert.Contains(t, exclude, "**/.git/**")
	assert.Contains(t, exclude, "**/drafts/**")
}
