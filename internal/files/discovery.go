package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindExcelFiles finds the .xlsx workbooks in dir, sorted by name.
// Office lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	return d.findBySuffix(dir, ".xlsx", func(name string) bool {
		return !strings.HasPrefix(name, "~$")
	})
}

// FindImages finds files with extension ext (".png") in dir, sorted by name.
// Name order is the page order of the PDF report.
func (d *Discovery) FindImages(dir, ext string) ([]FileInfo, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return d.findBySuffix(dir, strings.ToLower(ext), nil)
}

func (d *Discovery) findBySuffix(dir, suffix string, keep func(string) bool) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}
		if keep != nil && !keep(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// ResolveMonthFile returns the workbook path for month under dataDir.
// A missing or directory path is an error naming the month.
func (d *Discovery) ResolveMonthFile(dataDir string, month config.MonthConfig) (string, error) {
	path := month.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.resolve(dataDir), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("workbook for %s not found: %s", month.Key, path)
		}
		return "", fmt.Errorf("cannot access workbook for %s: %w", month.Key, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("workbook for %s is a directory: %s", month.Key, path)
	}
	return path, nil
}

// Paths returns the Path field of each file.
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
