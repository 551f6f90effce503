// Package config loads the settings surface for a ra project: result
// limits, per-tree document roots and glob filters, query-time defaults,
// and the context-search entry point's tuning knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete ra configuration for a project.
type Config struct {
	Version      int           `yaml:"version" json:"version"`
	DefaultLimit int           `yaml:"default_limit" json:"default_limit"`
	LocalBoost   float64       `yaml:"local_boost" json:"local_boost"`
	MaxChunkSize int           `yaml:"max_chunk_size" json:"max_chunk_size"`
	Search       SearchConfig  `yaml:"search" json:"search"`
	Context      ContextConfig `yaml:"context" json:"context"`
	Trees        []Tree        `yaml:"trees" json:"trees"`
}

// SearchConfig configures query-time behavior.
type SearchConfig struct {
	// Fuzzy enables fuzzy expansion of every bare query term, up to
	// FuzzyDistance edits; exact matches stay among the expanded terms.
	Fuzzy bool `yaml:"fuzzy" json:"fuzzy"`
	// FuzzyDistance is the maximum Levenshtein edit distance considered (0, 1, or 2).
	FuzzyDistance int `yaml:"fuzzy_distance" json:"fuzzy_distance"`
	// Stemmer names the snowball stemming language applied to every analyzed
	// text field (title, tags, path, path_components, body). It must be a
	// language internal/analyzer recognizes; no value disables stemming.
	Stemmer string `yaml:"stemmer" json:"stemmer"`
}

// ContextConfig configures the search_context entry point used by external
// context-extraction callers.
type ContextConfig struct {
	// DefaultLimit bounds how many chunks search_context returns when the
	// caller does not specify one.
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`
}

// Tree describes one document collection root.
type Tree struct {
	Name     string   `yaml:"name" json:"name"`
	Path     string   `yaml:"path" json:"path"`
	IsGlobal bool     `yaml:"is_global" json:"is_global"`
	Include  []string `yaml:"include" json:"include"`
	Exclude  []string `yaml:"exclude" json:"exclude"`
}

// defaultExcludePatterns are always excluded from every tree in addition to
// any tree-specific excludes.
var defaultExcludePatterns = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/.ra/**",
}

// SchemaVersion is the configuration format version written to a new
// Config's Version field. It does not enter the config hash; that uses
// internal/confighash.SchemaVersion.
const SchemaVersion = 1

// NewConfig creates a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version:      SchemaVersion,
		DefaultLimit: 10,
		LocalBoost:   1.5,
		MaxChunkSize: 2000,
		Search: SearchConfig{
			Fuzzy:         true,
			FuzzyDistance: 1,
			Stemmer:       "english",
		},
		Context: ContextConfig{
			DefaultLimit: 20,
		},
		Trees: nil,
	}
}

// Load loads configuration from the specified project directory, applying
// a `.ra.yaml`/`.ra.yml` project file over the defaults and then
// environment variable overrides (RA_*), highest precedence last.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".ra.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".ra.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.DefaultLimit != 0 {
		c.DefaultLimit = other.DefaultLimit
	}
	if other.LocalBoost != 0 {
		c.LocalBoost = other.LocalBoost
	}
	if other.MaxChunkSize != 0 {
		c.MaxChunkSize = other.MaxChunkSize
	}
	if other.Search.FuzzyDistance != 0 {
		c.Search.FuzzyDistance = other.Search.FuzzyDistance
	}
	if other.Search.Stemmer != "" {
		c.Search.Stemmer = other.Search.Stemmer
	}
	if other.Context.DefaultLimit != 0 {
		c.Context.DefaultLimit = other.Context.DefaultLimit
	}
	if len(other.Trees) > 0 {
		c.Trees = other.Trees
	}
}

// applyEnvOverrides applies RA_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RA_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DefaultLimit = n
		}
	}
	if v := os.Getenv("RA_LOCAL_BOOST"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.LocalBoost = f
		}
	}
	if v := os.Getenv("RA_MAX_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxChunkSize = n
		}
	}
	if v := os.Getenv("RA_SEARCH_STEMMER"); v != "" {
		c.Search.Stemmer = v
	}
	if v := os.Getenv("RA_SEARCH_FUZZY"); v != "" {
		c.Search.Fuzzy = strings.ToLower(v) == "true" || v == "1"
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.LocalBoost < 0 {
		return fmt.Errorf("local_boost must be non-negative, got %f", c.LocalBoost)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", c.MaxChunkSize)
	}
	if c.Search.FuzzyDistance < 0 || c.Search.FuzzyDistance > 2 {
		return fmt.Errorf("search.fuzzy_distance must be 0, 1, or 2, got %d", c.Search.FuzzyDistance)
	}

	seen := make(map[string]bool, len(c.Trees))
	for _, t := range c.Trees {
		if t.Name == "" {
			return fmt.Errorf("tree with empty name")
		}
		if strings.Contains(t.Name, ":") {
			return fmt.Errorf("tree name %q must not contain ':'", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate tree name %q", t.Name)
		}
		seen[t.Name] = true
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// TreeByName returns the tree with the given name, or false if undefined.
func (c *Config) TreeByName(name string) (Tree, bool) {
	for _, t := range c.Trees {
		if t.Name == name {
			return t, true
		}
	}
	return Tree{}, false
}

// EffectiveExclude returns a tree's exclude patterns plus the patterns
// excluded from every tree unconditionally.
func (t Tree) EffectiveExclude() []string {
	out := make([]string, 0, len(t.Exclude)+len(defaultExcludePatterns))
	out = append(out, defaultExcludePatterns...)
	out = append(out, t.Exclude...)
	return out
}

// FindProjectRoot finds the project root by walking up from startDir
// looking for a .git directory or a .ra.yaml/.ra.yml file.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, ".ra.yaml")) || fileExists(filepath.Join(currentDir, ".ra.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
