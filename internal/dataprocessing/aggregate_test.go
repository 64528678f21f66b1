package dataprocessing

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

func reading(id, element string, v float64) domain.Reading {
	return domain.Reading{LimsID: id, Element: element, Concentration: v, Location: ExtractLocation(id), Month: "March"}
}

func fixtureReadings() []domain.Reading {
	return []domain.Reading{
		reading("Herndon 1", "Tl", 0.002),
		reading("Herndon 2", "Tl", 0.004),
		reading("Herndon 1", "As", 0.010),
		reading("Kern River 1", "Tl", 0.001),
		reading("Kern River 1", "Ca", 12.5),
		reading("Kern River 2", "Ca", 13.5),
		reading("Tollhouse 1", "As", 0.030),
	}
}

func TestGroupMean(t *testing.T) {
	rows := GroupMean(fixtureReadings(), ByElementLocation)

	want := []domain.MeanRow{
		{Element: "As", Group: "Herndon", Mean: 0.010, Count: 1},
		{Element: "As", Group: "Tollhouse", Mean: 0.030, Count: 1},
		{Element: "Ca", Group: "Kern River", Mean: 13.0, Count: 2},
		{Element: "Tl", Group: "Herndon", Mean: 0.003, Count: 2},
		{Element: "Tl", Group: "Kern River", Mean: 0.001, Count: 1},
	}
	require.Len(t, rows, len(want))
	for i := range want {
		assert.Equal(t, want[i].Element, rows[i].Element)
		assert.Equal(t, want[i].Group, rows[i].Group)
		assert.Equal(t, want[i].Count, rows[i].Count)
		assert.InDelta(t, want[i].Mean, rows[i].Mean, 1e-12)
	}
}

// Each group mean equals the arithmetic mean of its members.
func TestGroupMean_MatchesArithmeticMean(t *testing.T) {
	readings := fixtureReadings()
	for _, key := range []KeyFunc{ByElementLocation, BySampleElement, ByLocationMonth} {
		for _, row := range GroupMean(readings, key) {
			var sum float64
			var n int
			for _, r := range readings {
				if k, ok := key(r); ok && k == (MeanKey{Element: row.Element, Group: row.Group, Month: row.Month}) {
					sum += r.Concentration
					n++
				}
			}
			require.Equal(t, n, row.Count)
			assert.InDelta(t, sum/float64(n), row.Mean, 1e-12)
		}
	}
}

func TestGroupMean_BySampleAndMonth(t *testing.T) {
	readings := append(fixtureReadings(), domain.Reading{
		LimsID: "Herndon 1", Element: "Tl", Concentration: 0.008, Location: "Herndon", Month: "April",
	})

	bySample := GroupMean(readings, BySampleElement)
	assert.Equal(t, "Herndon 1", bySample[0].Group)

	byMonth := GroupMean(FilterElements(readings, []string{"Tl"}), ByLocationMonth)
	require.Len(t, byMonth, 3)
	assert.Equal(t, domain.MeanRow{Element: "Tl", Group: "Herndon", Month: "April", Mean: 0.008, Count: 1}, byMonth[0])
	assert.Equal(t, "March", byMonth[1].Month)
	assert.InDelta(t, 0.003, byMonth[1].Mean, 1e-12)
}

func TestGroupMean_SkipsReadingsWithoutLocation(t *testing.T) {
	readings := []domain.Reading{
		reading("101", "Tl", 0.004),
		reading("Kern 1", "Tl", 0.002),
	}
	require.Empty(t, readings[0].Location)

	for _, key := range []KeyFunc{ByElementLocation, ByLocationMonth} {
		rows := GroupMean(readings, key)
		require.Len(t, rows, 1)
		assert.Equal(t, "Kern", rows[0].Group)
		assert.InDelta(t, 0.002, rows[0].Mean, 1e-12)
	}

	m := Pivot(GroupMean(readings, ByElementLocation))
	assert.Equal(t, []string{"Kern"}, m.Cols)

	bySample := GroupMean(readings, BySampleElement)
	require.Len(t, bySample, 2)
	assert.Equal(t, "101", bySample[0].Group)

	means := ElementMeans(readings)
	require.Len(t, means, 1)
	assert.InDelta(t, 0.003, means[0].Mean, 1e-12, "element means still count readings without a location")
}

func TestTopElements(t *testing.T) {
	readings := fixtureReadings()

	assert.Equal(t, []string{"Ca", "As", "Tl"}, TopElements(readings, 10))
	assert.Equal(t, []string{"Ca", "As"}, TopElements(readings, 2))
	assert.Empty(t, TopElements(nil, 10))

	tied := []domain.Reading{reading("A 1", "Zn", 1), reading("A 1", "Cu", 1)}
	assert.Equal(t, []string{"Cu", "Zn"}, TopElements(tied, 2), "ties break by name")
}

func TestFilterElements(t *testing.T) {
	got := FilterElements(fixtureReadings(), []string{"Tl"})
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, "Tl", r.Element)
	}
	assert.Empty(t, FilterElements(fixtureReadings(), nil))
}

func TestPivot(t *testing.T) {
	m := Pivot(GroupMean(fixtureReadings(), ByElementLocation))

	assert.Equal(t, []string{"As", "Ca", "Tl"}, m.Rows)
	assert.Equal(t, []string{"Herndon", "Kern River", "Tollhouse"}, m.Cols)

	v, ok := m.Get("Ca", "Kern River")
	assert.True(t, ok)
	assert.InDelta(t, 13.0, v, 1e-12)

	v, ok = m.Get("Ca", "Herndon")
	assert.False(t, ok)
	assert.True(t, math.IsNaN(v))

	_, ok = m.Get("Pb", "Herndon")
	assert.False(t, ok)
	assert.False(t, m.Empty())
	assert.True(t, Pivot(nil).Empty())
}

// Pivot then Unpivot returns every populated cell unchanged.
func TestPivotUnpivotRoundTrip(t *testing.T) {
	rows := GroupMean(fixtureReadings(), ByElementLocation)
	back := Unpivot(Pivot(rows))

	require.Len(t, back, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].Element, back[i].Element)
		assert.Equal(t, rows[i].Group, back[i].Group)
		assert.Equal(t, rows[i].Mean, back[i].Mean)
	}
}

func TestSortedGroupMeans(t *testing.T) {
	rows := []domain.MeanRow{
		{Element: "Tl", Group: "Herndon", Month: "March", Mean: 0.002},
		{Element: "Tl", Group: "Herndon", Month: "April", Mean: 0.004},
		{Element: "Tl", Group: "Kern River", Month: "March", Mean: 0.005},
		{Element: "Tl", Group: "Tollhouse", Month: "March", Mean: 0.001},
		{Element: "Tl", Group: "Millerton", Month: "March", Mean: 0.0045},
		{Element: "Tl", Group: "Millerton", Month: "April", Mean: 0.0001},
	}
	labels, values := SortedGroupMeans(rows)

	// Millerton averages below Herndon but has the higher single month.
	assert.Equal(t, []string{"Kern River", "Millerton", "Herndon", "Tollhouse"}, labels)
	assert.InDeltaSlice(t, []float64{0.005, 0.0023, 0.003, 0.001}, values, 1e-12)
}

func TestConcentrations(t *testing.T) {
	got := Concentrations(fixtureReadings())
	assert.Len(t, got["Tl"], 3)
	assert.Equal(t, []float64{12.5, 13.5}, got["Ca"])
}

func TestDescribe(t *testing.T) {
	ds := domain.MonthDataset{
		Key:      "March2025",
		Label:    "March",
		Source:   "data/March2025_Data.xlsx",
		Readings: fixtureReadings(),
		Stats: domain.CleaningStats{
			Total:   10,
			Kept:    7,
			Dropped: map[domain.DropReason]int{domain.DropBlank: 2, domain.DropStandard: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Describe(&buf, ds))

	out := buf.String()
	assert.Contains(t, out, "== March")
	assert.Contains(t, out, "rows=7 cols=4")
	assert.Contains(t, out, "Concentration")
	assert.Contains(t, out, "mean")
	assert.Contains(t, out, "total=10 kept=7")
	assert.Contains(t, out, "blank")

	buf.Reset()
	require.NoError(t, Describe(&buf, domain.MonthDataset{Key: "Kern", Label: "May"}))
	assert.Contains(t, buf.String(), "no readings retained")
}
