package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestFindExcelFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "sorted by name regardless of case",
			files:    []string{"March2025_Data.xlsx", "Feb2025_Data.XLSX", "Kern_Data.xlsx"},
			expected: []string{"Feb2025_Data.XLSX", "Kern_Data.xlsx", "March2025_Data.xlsx"},
		},
		{
			name:     "skips lock files and other types",
			files:    []string{"Kern_Data.xlsx", "~$Kern_Data.xlsx", "notes.csv", "legacy.xls"},
			expected: []string{"Kern_Data.xlsx"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			found, err := NewDiscovery("").FindExcelFiles(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(found))
		})
	}
}

func TestFindExcelFiles_MissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindExcelFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFindImages_NameOrderNotModTime(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "TopElements_Oct2024_Heatmap.png", "TopElements_Jan2025_Heatmap.png", "readme.txt")

	// make the alphabetically first file the newest
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "TopElements_Jan2025_Heatmap.png"), future, future))

	found, err := NewDiscovery("").FindImages(dir, "png")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"TopElements_Jan2025_Heatmap.png",
		"TopElements_Oct2024_Heatmap.png",
	}, names(found))
	assert.Equal(t, filepath.Join(dir, "TopElements_Jan2025_Heatmap.png"), Paths(found)[0])
}

func TestResolveMonthFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Kern_Data.xlsx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Jan2025_Data.xlsx"), 0755))

	d := NewDiscovery("")

	path, err := d.ResolveMonthFile(dir, config.MonthConfig{Key: "Kern", File: "Kern_Data.xlsx"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Kern_Data.xlsx"), path)

	_, err = d.ResolveMonthFile(dir, config.MonthConfig{Key: "Oct2024", File: "Oct2024_Data.xlsx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Oct2024")

	_, err = d.ResolveMonthFile(dir, config.MonthConfig{Key: "Jan2025", File: "Jan2025_Data.xlsx"})
	assert.Error(t, err)
}
