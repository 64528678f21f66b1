package domain

import (
	"math"
	"sort"
)

// Reading represents a single laboratory measurement row from a monthly workbook.
// Location is derived from the Lims ID during cleaning.
type Reading struct {
	LimsID        string  `json:"lims_id" db:"lims_id" validate:"required"`
	Element       string  `json:"element" db:"element" validate:"required"`
	Concentration float64 `json:"concentration" db:"concentration"`
	Type          string  `json:"type,omitempty" db:"type"`
	Month         string  `json:"month" db:"month"`
	Location      string  `json:"location" db:"location"`
	Row           int     `json:"row" db:"source_row"` // 1-based row in the source sheet
}

// RawReading is a parsed sheet row before the concentration is coerced.
type RawReading struct {
	LimsID        string
	Element       string
	Concentration string
	Type          string
	Row           int
}

// DropReason names why the cleaning filter discarded a row.
type DropReason string

const (
	DropStandard   DropReason = "standard"
	DropDilution   DropReason = "dilution"
	DropBlank      DropReason = "blank"
	DropNonNumeric DropReason = "non_numeric"
	DropMissingID  DropReason = "missing_id"
)

// CleaningStats counts rows seen, kept and dropped by reason.
type CleaningStats struct {
	Total   int                `json:"total"`
	Kept    int                `json:"kept"`
	Dropped map[DropReason]int `json:"dropped"`
}

// DroppedTotal returns the number of rows discarded for any reason.
func (s CleaningStats) DroppedTotal() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// MonthDataset holds the cleaned readings of one sampling month.
type MonthDataset struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Source   string        `json:"source"`
	Readings []Reading     `json:"readings"`
	Stats    CleaningStats `json:"stats"`
}

// MeanRow is one cell of a group-wise mean table.
// Group is a location or a sample ID depending on the chart. Month is set
// only when the table is split by sampling month.
type MeanRow struct {
	Element string  `json:"element" db:"element"`
	Group   string  `json:"group" db:"group_key"`
	Month   string  `json:"month,omitempty" db:"month"`
	Mean    float64 `json:"mean" db:"mean"`
	Count   int     `json:"count" db:"count"`
}

// Matrix is a pivoted mean table, rows are elements and columns are groups.
// Missing cells hold NaN.
type Matrix struct {
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Values [][]float64 `json:"values"`
}

// Get returns the value at (row, col) and whether the cell is populated.
func (m Matrix) Get(row, col string) (float64, bool) {
	r := sort.SearchStrings(m.Rows, row)
	if r >= len(m.Rows) || m.Rows[r] != row {
		return math.NaN(), false
	}
	c := sort.SearchStrings(m.Cols, col)
	if c >= len(m.Cols) || m.Cols[c] != col {
		return math.NaN(), false
	}
	v := m.Values[r][c]
	return v, !math.IsNaN(v)
}

// Empty reports whether the matrix has no rows or no columns.
func (m Matrix) Empty() bool {
	return len(m.Rows) == 0 || len(m.Cols) == 0
}
