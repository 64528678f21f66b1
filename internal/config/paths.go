package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute application paths.
// This is the single source of truth for file locations used by the pipeline.
type Paths struct {
	WorkingDir string
	DataDir    string
	PlotsDir   string
	OutputDir  string
	ExportDir  string
	LogsDir    string
}

// ResolvePaths resolves the configured paths against the working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return c.ResolvePathsFrom(wd), nil
}

// ResolvePathsFrom resolves the configured paths against base.
func (c *Config) ResolvePathsFrom(base string) *Paths {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	return &Paths{
		WorkingDir: base,
		DataDir:    abs(c.Paths.DataDir),
		PlotsDir:   abs(c.Paths.PlotsDir),
		OutputDir:  abs(c.Paths.OutputDir),
		ExportDir:  abs(c.Paths.ExportDir),
		LogsDir:    abs(c.Paths.LogsDir),
	}
}

// EnsureOutputDirectories creates the directories the pipeline writes to.
// The data directory is input only and is never created.
func (p *Paths) EnsureOutputDirectories() error {
	for _, dir := range []string{p.PlotsDir, p.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetDataPath returns the path of a workbook in the data directory
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetPlotPath returns the path for an image in the plots directory
func (p *Paths) GetPlotPath(filename string) string {
	return filepath.Join(p.PlotsDir, filename)
}

// GetOutputPath returns the path for a file in the output directory
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetExportPath returns the path for an export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportDir, filename)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("data", p.DataDir),
			slog.String("plots", p.PlotsDir),
			slog.String("output", p.OutputDir),
			slog.String("export", p.ExportDir),
			slog.String("logs", p.LogsDir),
		))
}
