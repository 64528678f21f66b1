package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
	"github.com/CayleighSitchon/water-quality-analysis/internal/files"
)

// FileValidator checks the directories and workbooks a run touches before
// any parsing or rendering starts.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDataDirectory checks that the lab data directory exists and
// returns the workbooks it holds. An empty directory is not an error here;
// the month checks report each missing workbook by name.
func (v *FileValidator) ValidateDataDirectory(dir string) ([]files.FileInfo, error) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		v.logger.Error("Data directory does not exist", slog.String("data_dir", dir))
		return nil, fmt.Errorf("data directory %s does not exist", dir)
	case err != nil:
		return nil, fmt.Errorf("cannot access data directory %s: %w", dir, err)
	case !info.IsDir():
		v.logger.Error("Data directory is a file", slog.String("data_dir", dir))
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}

	workbooks, err := files.NewDiscovery("").FindExcelFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(workbooks) == 0 {
		v.logger.Warn("No lab workbooks in data directory", slog.String("data_dir", dir))
		return nil, nil
	}

	v.logger.Debug("Data directory checked",
		slog.String("data_dir", dir),
		slog.Int("workbooks", len(workbooks)))
	return workbooks, nil
}

// ValidateWritableDirectory creates dir when needed and proves a chart can
// be written into it.
func (v *FileValidator) ValidateWritableDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create chart directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, ".wqreport-*")
	if err != nil {
		v.logger.Error("Chart directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("chart directory %s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return nil
}

// ValidateMonthWorkbook resolves the workbook of month under dataDir and
// checks that excelize can open it: an existing, readable .xlsx or .xlsm
// file that is not an Office lock file.
func (v *FileValidator) ValidateMonthWorkbook(dataDir string, month config.MonthConfig) (string, error) {
	path := month.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}

	name := filepath.Base(path)
	if strings.HasPrefix(name, "~$") {
		return "", fmt.Errorf("month %s names the Office lock file %s, not a workbook", month.Key, name)
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".xlsx" && ext != ".xlsm" {
		return "", fmt.Errorf("month %s workbook %s is not an Excel workbook (extension %q)", month.Key, name, ext)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("month %s workbook %s does not exist", month.Key, path)
	}
	if err != nil {
		return "", fmt.Errorf("month %s workbook: %w", month.Key, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("month %s workbook %s is a directory", month.Key, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("month %s workbook %s is not readable: %w", month.Key, path, err)
	}
	f.Close()

	v.logger.Debug("Month workbook found",
		slog.String("month", month.Key),
		slog.String("workbook", path),
		slog.Int64("size", info.Size()))
	return path, nil
}
