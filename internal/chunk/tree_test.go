package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ra/internal/ids"
)

func TestBuildNoHeadingsProducesSingleRoot(t *testing.T) {
	tree := Build("Just some plain text.", "docs", "guide.md", "Guide")
	assert.Equal(t, 1, tree.NodeCount())
	assert.Equal(t, "Just some plain text.", tree.Root.Body)
	assert.Equal(t, 0, tree.Root.Depth)
	assert.Nil(t, tree.Root.ParentID)
}

func TestBuildNestsHeadingsByLevel(t *testing.T) {
	body := "Preamble text.\n\n# Intro\n\nIntro body.\n\n## Installation\n\nInstall steps.\n\n## Usage\n\nUsage steps.\n"
	tree := Build(body, "docs", "guide.md", "Guide")

	chunks := tree.Extract()
	require.Len(t, chunks, 4)

	root := chunks[0]
	assert.True(t, root.ID.IsDocument())
	assert.Contains(t, root.Body, "Preamble text.")
	assert.NotContains(t, root.Body, "Intro body.")

	intro := chunks[1]
	assert.Equal(t, "Intro", intro.Title)
	assert.Equal(t, 1, intro.Depth)
	assert.Equal(t, []string{"Guide", "Intro"}, intro.Hierarchy)
	assert.Contains(t, intro.Body, "Intro body.")
	assert.NotContains(t, intro.Body, "Install steps.")
	assert.Equal(t, "docs:guide.md#intro", intro.ID.String())

	install := chunks[2]
	assert.Equal(t, "Installation", install.Title)
	assert.Equal(t, 2, install.Depth)
	assert.Equal(t, []string{"Guide", "Intro", "Installation"}, install.Hierarchy)
	assert.Equal(t, 2, install.SiblingCount)
	// Nested slugs are prefixed by their parent's slug, so a child's ID is
	// always a "-"-delimited extension of its parent's.
	assert.Equal(t, "docs:guide.md#intro-installation", install.ID.String())

	usage := chunks[3]
	assert.Equal(t, "Usage", usage.Title)
	assert.Equal(t, 2, usage.SiblingCount)
	assert.Equal(t, "docs:guide.md#intro-usage", usage.ID.String())
}

func TestBuildNestedSlugsArePrefixedByAncestorSlugs(t *testing.T) {
	body := "# A\n\nBody A.\n\n## B\n\nBody B.\n"
	tree := Build(body, "docs", "p.md", "P")

	chunks := tree.Extract()
	require.Len(t, chunks, 3)

	a := chunks[1]
	b := chunks[2]
	assert.Equal(t, "docs:p.md#a", a.ID.String())
	assert.Equal(t, "docs:p.md#a-b", b.ID.String())
	assert.True(t, ids.IsAncestor(a.ID.String(), b.ID.String()))
}

func TestBuildSkipsLevelsWithoutSyntheticNodes(t *testing.T) {
	body := "# Title\n\n### Deep Section\n\nDeep content.\n"
	tree := Build(body, "docs", "guide.md", "Guide")

	chunks := tree.Extract()
	require.Len(t, chunks, 3)
	assert.Equal(t, "Title", chunks[1].Title)
	assert.Equal(t, "Deep Section", chunks[2].Title)
	assert.Equal(t, []string{"Guide", "Title", "Deep Section"}, chunks[2].Hierarchy)
}

func TestBuildIgnoresHashesInFencedCodeBlocks(t *testing.T) {
	body := "# Real Heading\n\n```\n# not a heading\n```\n\nBody text.\n"
	tree := Build(body, "docs", "guide.md", "Guide")

	chunks := tree.Extract()
	require.Len(t, chunks, 2)
	assert.Equal(t, "Real Heading", chunks[1].Title)
	assert.Contains(t, chunks[1].Body, "# not a heading")
}

func TestBuildDedupsDuplicateHeadingSlugs(t *testing.T) {
	body := "# Overview\n\nFirst.\n\n# Overview\n\nSecond.\n"
	tree := Build(body, "docs", "guide.md", "Guide")

	chunks := tree.Extract()
	require.Len(t, chunks, 3)
	assert.Equal(t, "docs:guide.md#overview", chunks[1].ID.String())
	assert.Equal(t, "docs:guide.md#overview-1", chunks[2].ID.String())
}

func TestBuildPositionsArePreOrder(t *testing.T) {
	body := "# A\n\nBody A.\n\n## B\n\nBody B.\n\n# C\n\nBody C.\n"
	tree := Build(body, "docs", "guide.md", "Guide")

	chunks := tree.Extract()
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
	}
}

func TestBreadcrumbJoinsHierarchy(t *testing.T) {
	c := Chunk{Hierarchy: []string{"Guide", "Intro", "Setup"}}
	assert.Equal(t, "Guide › Intro › Setup", c.Breadcrumb())
}
