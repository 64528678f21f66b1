package validation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
)

// Preflight checks every selected month workbook and the output directories
// up front, so a run fails before any chart is written. All problems are
// reported together.
func (v *FileValidator) Preflight(paths *config.Paths, months []config.MonthConfig) error {
	workbooks, err := v.ValidateDataDirectory(paths.DataDir)
	if err != nil {
		return err
	}

	used := make(map[string]bool, len(months))
	var errs []error
	for _, m := range months {
		if err := ValidateStruct(m); err != nil {
			errs = append(errs, fmt.Errorf("month %q: %w", m.Key, err))
			continue
		}
		path, err := v.ValidateMonthWorkbook(paths.DataDir, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		used[path] = true
	}

	for _, wb := range workbooks {
		if !used[wb.Path] {
			v.logger.Debug("Workbook not selected for this run", slog.String("workbook", wb.Name))
		}
	}

	for _, dir := range []string{paths.PlotsDir, paths.OutputDir} {
		if err := v.ValidateWritableDirectory(dir); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	v.logger.Info("Preflight passed",
		slog.Int("months", len(months)),
		slog.Int("workbooks_in_data_dir", len(workbooks)),
		slog.String("data_dir", paths.DataDir))
	return nil
}
