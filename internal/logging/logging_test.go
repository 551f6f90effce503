package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ra.log")

	logger, cleanup, err := Setup(Config{
		Level:         "info",
		FilePath:      path,
		MaxSizeMB:     1,
		MaxFiles:      2,
		WriteToStderr: false,
	})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("indexing started", "tree", "docs")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "indexing started")
	assert.Contains(t, string(data), `"tree":"docs"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelFromString("debug").String())
	assert.Equal(t, "INFO", LevelFromString("info").String())
	assert.Equal(t, "WARN", LevelFromString("warn").String())
	assert.Equal(t, "ERROR", LevelFromString("error").String())
	assert.Equal(t, "INFO", LevelFromString("unknown").String())
}

func TestRotatingWriterRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ra.log")

	w, err := NewRotatingWriter(path, 0, 2)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("first line\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second line triggers rotation\n"))
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.FileExists(t, path+".1")
}
