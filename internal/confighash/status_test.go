package confighash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ra/internal/config"
)

func TestStatusDescription(t *testing.T) {
	assert.Equal(t, "current", StatusCurrent.Description())
	assert.Equal(t, "stale (config changed)", StatusConfigChanged.Description())
	assert.Equal(t, "stale", StatusStale.Description())
	assert.Equal(t, "missing", StatusMissing.Description())
}

func TestStatusNeedsUpdate(t *testing.T) {
	assert.False(t, StatusCurrent.NeedsUpdate())
	assert.True(t, StatusConfigChanged.NeedsUpdate())
	assert.True(t, StatusStale.NeedsUpdate())
	assert.True(t, StatusMissing.NeedsUpdate())
}

func TestStatusNeedsRebuild(t *testing.T) {
	assert.False(t, StatusCurrent.NeedsRebuild())
	assert.True(t, StatusConfigChanged.NeedsRebuild())
	assert.False(t, StatusStale.NeedsRebuild())
	assert.True(t, StatusMissing.NeedsRebuild())
}

func writeMarker(t *testing.T, idxDir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(idxDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(idxDir, "index_meta.json"), []byte("{}"), 0o644))
}

func TestDetectStatusMissingWhenNoConfigRoot(t *testing.T) {
	assert.Equal(t, StatusMissing, DetectIndexStatus("", config.NewConfig()))
}

func TestDetectStatusMissingWhenNoIndexDir(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusMissing, DetectIndexStatus(dir, config.NewConfig()))
}

func TestDetectStatusMissingWhenNoMarkerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(IndexDir(dir), 0o755))

	assert.Equal(t, StatusMissing, DetectIndexStatus(dir, config.NewConfig()))
}

func TestDetectStatusConfigChangedWhenNoHash(t *testing.T) {
	dir := t.TempDir()
	writeMarker(t, IndexDir(dir))

	assert.Equal(t, StatusConfigChanged, DetectIndexStatus(dir, config.NewConfig()))
}

func TestDetectStatusConfigChangedWhenHashDiffers(t *testing.T) {
	dir := t.TempDir()
	idxDir := IndexDir(dir)
	writeMarker(t, idxDir)
	require.NoError(t, WriteConfigHash(idxDir, "old_hash"))

	assert.Equal(t, StatusConfigChanged, DetectIndexStatus(dir, config.NewConfig()))
}

func TestDetectStatusCurrentWhenHashMatches(t *testing.T) {
	dir := t.TempDir()
	idxDir := IndexDir(dir)
	writeMarker(t, idxDir)

	cfg := config.NewConfig()
	require.NoError(t, WriteConfigHash(idxDir, ComputeConfigHash(cfg)))

	assert.Equal(t, StatusCurrent, DetectIndexStatus(dir, cfg))
}
