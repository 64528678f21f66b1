package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

var (
	// ErrNoDataSheet is returned when no sheet carries the required header row.
	ErrNoDataSheet = errors.New("no sheet with laboratory data found")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Canonical column names after header trimming.
const (
	ColumnLimsID        = "Lims ID"
	ColumnElement       = "Element"
	ColumnElementLabel  = "Element Label"
	ColumnConcentration = "Concentration"
	ColumnType          = "Type"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
const headerScanRows = 10

// ParseOptions configures workbook parsing.
type ParseOptions struct {
	// SheetName selects a sheet explicitly. Empty picks the first sheet whose
	// header row carries the required columns.
	SheetName string
}

// ParseResult is the raw content of one workbook.
type ParseResult struct {
	Path      string
	Sheet     string
	HeaderRow int // 1-based
	Columns   map[string]int
	HasType   bool
	Rows      []domain.RawReading
}

// columnMap holds the zero-based index of each recognised column, -1 when absent.
type columnMap struct {
	limsID, element, concentration, typ int
}

func (c columnMap) missing() []string {
	var out []string
	if c.limsID < 0 {
		out = append(out, ColumnLimsID)
	}
	if c.element < 0 {
		out = append(out, ColumnElement)
	}
	if c.concentration < 0 {
		out = append(out, ColumnConcentration)
	}
	return out
}

// mapHeader matches trimmed, case-insensitive header names. Element Label
// wins over Element when a sheet has both, since the symbol is what the
// charts display.
func mapHeader(row []string) columnMap {
	cols := columnMap{limsID: -1, element: -1, concentration: -1, typ: -1}
	elementName := -1
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "lims id":
			cols.limsID = i
		case "element label":
			cols.element = i
		case "element":
			elementName = i
		case "concentration":
			cols.concentration = i
		case "type":
			cols.typ = i
		}
	}
	if cols.element < 0 {
		cols.element = elementName
	}
	return cols
}

// ParseWorkbook reads the laboratory rows of an .xlsx workbook. Header names
// are trimmed before matching. Concentration cells are kept as raw text and
// coerced later so unparseable values can be counted.
func ParseWorkbook(path string, opts ParseOptions) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if opts.SheetName != "" {
		sheets = []string{opts.SheetName}
	}

	var lastMissing []string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			if opts.SheetName != "" {
				return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
			}
			continue
		}

		headerIdx, cols := findHeader(rows)
		if headerIdx < 0 {
			if missing := cols.missing(); len(missing) < 3 {
				lastMissing = missing
			}
			continue
		}

		result := &ParseResult{
			Path:      path,
			Sheet:     sheet,
			HeaderRow: headerIdx + 1,
			Columns: map[string]int{
				ColumnLimsID:        cols.limsID,
				ColumnElement:       cols.element,
				ColumnConcentration: cols.concentration,
			},
			HasType: cols.typ >= 0,
		}
		if result.HasType {
			result.Columns[ColumnType] = cols.typ
		}
		result.Rows = extractRows(rows, headerIdx, cols)

		slog.Debug("Parsed workbook",
			slog.String("path", path),
			slog.String("sheet", sheet),
			slog.Int("header_row", result.HeaderRow),
			slog.Int("rows", len(result.Rows)),
			slog.Bool("has_type", result.HasType))

		return result, nil
	}

	if len(lastMissing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingColumn, strings.Join(lastMissing, ", "))
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNoDataSheet)
}

// findHeader returns the index of the first row carrying every required
// column. When none does, the best partial match is returned with index -1
// so the caller can name the missing columns.
func findHeader(rows [][]string) (int, columnMap) {
	best := columnMap{limsID: -1, element: -1, concentration: -1, typ: -1}
	bestMissing := 4
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		cols := mapHeader(rows[i])
		missing := len(cols.missing())
		if missing == 0 {
			return i, cols
		}
		if missing < bestMissing {
			best, bestMissing = cols, missing
		}
	}
	return -1, best
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func extractRows(rows [][]string, headerIdx int, cols columnMap) []domain.RawReading {
	out := make([]domain.RawReading, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		raw := domain.RawReading{
			LimsID:        cell(row, cols.limsID),
			Element:       cell(row, cols.element),
			Concentration: cell(row, cols.concentration),
			Type:          cell(row, cols.typ),
			Row:           i + 1,
		}
		if raw.LimsID == "" && raw.Element == "" && raw.Concentration == "" && raw.Type == "" {
			continue
		}
		out = append(out, raw)
	}
	return out
}
