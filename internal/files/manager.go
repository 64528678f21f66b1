package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
)

// Manager provides file management operations relative to the resolved
// application paths.
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// WriteAtomic streams write into a temporary sibling of path and renames it
// into place, so a failed render never leaves a truncated image or report.
func (m *Manager) WriteAtomic(path string, write func(io.Writer) error) error {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", fullPath, err)
	}

	slog.Debug("Wrote file", slog.String("path", fullPath))
	return nil
}

// ResolvePath exposes the path resolution rules.
func (m *Manager) ResolvePath(path string) string {
	return m.resolvePath(path)
}

// resolvePath resolves a path relative to the appropriate base directory.
// Prefixes data/, plots/, exports/ and logs/ select the configured
// directories; anything else lands in the output directory.
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	slashed := filepath.ToSlash(path)
	switch {
	case strings.HasPrefix(slashed, "data/"):
		return m.paths.GetDataPath(strings.TrimPrefix(slashed, "data/"))
	case strings.HasPrefix(slashed, "plots/"):
		return m.paths.GetPlotPath(strings.TrimPrefix(slashed, "plots/"))
	case strings.HasPrefix(slashed, "exports/"):
		return m.paths.GetExportPath(strings.TrimPrefix(slashed, "exports/"))
	case strings.HasPrefix(slashed, "logs/"):
		return filepath.Join(m.paths.LogsDir, strings.TrimPrefix(slashed, "logs/"))
	default:
		return m.paths.GetOutputPath(path)
	}
}
