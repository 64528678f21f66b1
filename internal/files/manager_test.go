package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
)

func testManager(t *testing.T) (*Manager, *config.Paths) {
	t.Helper()
	paths := config.Default().ResolvePathsFrom(t.TempDir())
	return NewManager(paths), paths
}

func TestManager_ResolvePath(t *testing.T) {
	m, paths := testManager(t)

	tests := []struct {
		in   string
		want string
	}{
		{"data/Kern_Data.xlsx", filepath.Join(paths.DataDir, "Kern_Data.xlsx")},
		{"plots/x.png", filepath.Join(paths.PlotsDir, "x.png")},
		{"exports/readings.csv", filepath.Join(paths.ExportDir, "readings.csv")},
		{"logs/run.log", filepath.Join(paths.LogsDir, "run.log")},
		{"WaterQuality_Report.pdf", filepath.Join(paths.OutputDir, "WaterQuality_Report.pdf")},
		{"/abs/file.png", "/abs/file.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ResolvePath(tt.in))
		})
	}
}

func TestManager_WriteAtomic(t *testing.T) {
	m, paths := testManager(t)

	err := m.WriteAtomic("plots/chart.png", func(w io.Writer) error {
		_, err := w.Write([]byte("png"))
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(paths.PlotsDir, "chart.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Empty(t, mustGlob(t, filepath.Join(paths.PlotsDir, ".chart.png.*")), "temp file renamed away")
}

func TestManager_WriteAtomic_FailureLeavesNothing(t *testing.T) {
	m, paths := testManager(t)

	err := m.WriteAtomic("plots/broken.png", func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("render failed")
	})
	require.Error(t, err)

	entries, err := os.ReadDir(paths.PlotsDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp or partial file remains")
}

func TestManager_WriteAtomic_ReplacesExisting(t *testing.T) {
	m, paths := testManager(t)
	target := filepath.Join(paths.ExportDir, "locations_means.csv")
	require.NoError(t, os.MkdirAll(paths.ExportDir, 0755))
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	require.NoError(t, m.WriteAtomic("exports/locations_means.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func mustGlob(t *testing.T, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	return matches
}
