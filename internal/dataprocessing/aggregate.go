package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// MeanKey identifies one group of a mean table.
type MeanKey struct {
	Element string
	Group   string
	Month   string
}

// KeyFunc maps a reading to its group. A false result leaves the reading
// out of the table.
type KeyFunc func(domain.Reading) (MeanKey, bool)

// ByElementLocation groups by element and sampling location. Readings whose
// Lims ID carries no location are left out.
func ByElementLocation(r domain.Reading) (MeanKey, bool) {
	return MeanKey{Element: r.Element, Group: r.Location}, r.Location != ""
}

// BySampleElement groups by element and full Lims ID.
func BySampleElement(r domain.Reading) (MeanKey, bool) {
	return MeanKey{Element: r.Element, Group: r.LimsID}, true
}

// ByLocationMonth groups by element, location and month. Readings whose
// Lims ID carries no location are left out.
func ByLocationMonth(r domain.Reading) (MeanKey, bool) {
	return MeanKey{Element: r.Element, Group: r.Location, Month: r.Month}, r.Location != ""
}

// GroupMean computes the arithmetic mean concentration of every group.
// Rows are ordered by element, group and month.
func GroupMean(readings []domain.Reading, key KeyFunc) []domain.MeanRow {
	groups := make(map[MeanKey][]float64)
	for _, r := range readings {
		k, ok := key(r)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], r.Concentration)
	}

	out := make([]domain.MeanRow, 0, len(groups))
	for k, values := range groups {
		out = append(out, domain.MeanRow{
			Element: k.Element,
			Group:   k.Group,
			Month:   k.Month,
			Mean:    stat.Mean(values, nil),
			Count:   len(values),
		})
	}
	sortMeanRows(out)
	return out
}

func sortMeanRows(rows []domain.MeanRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Element != b.Element {
			return a.Element < b.Element
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Month < b.Month
	})
}

// ElementMeans returns the mean concentration of each element, highest first.
// Ties are broken by element name.
func ElementMeans(readings []domain.Reading) []domain.MeanRow {
	rows := GroupMean(readings, func(r domain.Reading) (MeanKey, bool) {
		return MeanKey{Element: r.Element}, true
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Mean != rows[j].Mean {
			return rows[i].Mean > rows[j].Mean
		}
		return rows[i].Element < rows[j].Element
	})
	return rows
}

// TopElements returns the n elements with the highest mean concentration,
// highest first. Fewer are returned when the data has fewer elements.
func TopElements(readings []domain.Reading, n int) []string {
	means := ElementMeans(readings)
	if n < len(means) {
		means = means[:n]
	}
	out := make([]string, len(means))
	for i, m := range means {
		out[i] = m.Element
	}
	return out
}

// FilterElements keeps readings whose element is in elements.
func FilterElements(readings []domain.Reading, elements []string) []domain.Reading {
	set := make(map[string]bool, len(elements))
	for _, e := range elements {
		set[e] = true
	}
	out := make([]domain.Reading, 0, len(readings))
	for _, r := range readings {
		if set[r.Element] {
			out = append(out, r)
		}
	}
	return out
}

// Concentrations collects the values of readings grouped by element.
func Concentrations(readings []domain.Reading) map[string][]float64 {
	out := make(map[string][]float64)
	for _, r := range readings {
		out[r.Element] = append(out[r.Element], r.Concentration)
	}
	return out
}

// Pivot reshapes mean rows into an element by group matrix. Rows and columns
// are sorted; combinations without data hold NaN. Month is ignored, so rows
// must be unique per element and group.
func Pivot(rows []domain.MeanRow) domain.Matrix {
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)
	for _, r := range rows {
		rowSet[r.Element] = true
		colSet[r.Group] = true
	}

	m := domain.Matrix{
		Rows: sortedKeys(rowSet),
		Cols: sortedKeys(colSet),
	}
	rowIdx := indexOf(m.Rows)
	colIdx := indexOf(m.Cols)

	m.Values = make([][]float64, len(m.Rows))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(m.Cols))
		for j := range m.Values[i] {
			m.Values[i][j] = math.NaN()
		}
	}
	for _, r := range rows {
		m.Values[rowIdx[r.Element]][colIdx[r.Group]] = r.Mean
	}
	return m
}

// Unpivot flattens m back into mean rows, skipping missing cells. The result
// is ordered by element then group. Counts are not kept by a matrix and are
// returned as zero.
func Unpivot(m domain.Matrix) []domain.MeanRow {
	var out []domain.MeanRow
	for i, row := range m.Rows {
		for j, col := range m.Cols {
			v := m.Values[i][j]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, domain.MeanRow{Element: row, Group: col, Mean: v})
		}
	}
	return out
}

// SortedGroupMeans averages rows per group, ignoring element and month. Groups
// are ordered by their highest single row, highest first, so a location with
// one high month leads even when its other months are low.
func SortedGroupMeans(rows []domain.MeanRow) ([]string, []float64) {
	groups := make(map[string][]float64)
	for _, r := range rows {
		groups[r.Group] = append(groups[r.Group], r.Mean)
	}

	type entry struct {
		group string
		mean  float64
		peak  float64
	}
	entries := make([]entry, 0, len(groups))
	for g, v := range groups {
		entries = append(entries, entry{group: g, mean: stat.Mean(v, nil), peak: floats.Max(v)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].peak != entries[j].peak {
			return entries[i].peak > entries[j].peak
		}
		return entries[i].group < entries[j].group
	})

	labels := make([]string, len(entries))
	values := make([]float64, len(entries))
	for i, e := range entries {
		labels[i], values[i] = e.group, e.mean
	}
	return labels, values
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}
