package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesWithNoIncludeMatchesEverythingNotExcluded(t *testing.T) {
	set, err := Compile(nil, []string{"**/drafts/**"})
	require.NoError(t, err)

	assert.True(t, set.Matches("guide/intro.md"))
	assert.False(t, set.Matches("drafts/wip.md"))
	assert.False(t, set.Matches("guide/drafts/wip.md"))
}

func TestMatchesRequiresIncludeWhenSet(t *testing.T) {
	set, err := Compile([]string{"**/*.md"}, nil)
	require.NoError(t, err)

	assert.True(t, set.Matches("guide/intro.md"))
	assert.False(t, set.Matches("guide/intro.txt"))
}

func TestExcludeWinsOverInclude(t *testing.T) {
	set, err := Compile([]string{"**/*.md"}, []string{"**/archive/**"})
	require.NoError(t, err)

	assert.False(t, set.Matches("archive/old.md"))
}

func TestCompileRejectsInvalidPattern(t *testing.T) {
	_, err := Compile([]string{"["}, nil)
	require.Error(t, err)
}
