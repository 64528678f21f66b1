package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsFrom(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExportDir = "/abs/exports"

	base := t.TempDir()
	paths := cfg.ResolvePathsFrom(base)

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "plots"), paths.PlotsDir)
	assert.Equal(t, base, paths.OutputDir)
	assert.Equal(t, "/abs/exports", paths.ExportDir, "absolute paths are kept")
	assert.Equal(t, filepath.Join(base, "data", "Kern_Data.xlsx"), paths.GetDataPath("Kern_Data.xlsx"))
	assert.Equal(t, filepath.Join(base, "plots", "x.png"), paths.GetPlotPath("x.png"))
}

func TestEnsureOutputDirectories(t *testing.T) {
	base := t.TempDir()
	paths := Default().ResolvePathsFrom(base)

	require.NoError(t, paths.EnsureOutputDirectories())

	info, err := os.Stat(paths.PlotsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(paths.DataDir)
	assert.True(t, os.IsNotExist(err), "data directory is input only")
}
