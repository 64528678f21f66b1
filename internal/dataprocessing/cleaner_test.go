package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

var fullProfile = CleaningProfile{
	DropStandards: true,
	DropDilutions: true,
	DropBlanks:    true,
	StandardType:  "STD",
	BlankMarkers:  []string{"DI", "HNO"},
}

func TestIsDilutionTrial(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"Tollhouse1.1", true},
		{"Herndon 2.10", true},
		{"Herndon 2", false},
		{"Kern.River", false},
		{"1.", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDilutionTrial(tt.id))
		})
	}
}

func TestIsBlank(t *testing.T) {
	markers := []string{"DI", "HNO"}
	tests := []struct {
		id   string
		want bool
	}{
		{"DI Water", true},
		{"di blank 2", true},
		{"2% HNO3", true},
		{"Dixon Creek", true}, // substring match
		{"Herndon 1", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBlank(tt.id, markers))
		})
	}
	assert.False(t, IsBlank("DI Water", nil))
	assert.False(t, IsBlank("DI Water", []string{""}))
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"Herndon 1", "Herndon"},
		{"Kern River 3", "Kern River"},
		{"Tollhouse1.1", "Tollhouse"},
		{"  Millerton Lake", "Millerton Lake"},
		{"12-A", "A"},
		{"123", ""},
		{"101.2", ""},
		{" 4-5 ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLocation(tt.id))
		})
	}
}

func TestParseConcentration(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"0.002", 0.002, true},
		{" 1.5 ", 1.5, true},
		{"2E-03", 0.002, true},
		{"-0.0001", -0.0001, true},
		{"", 0, false},
		{"<LOD", 0, false},
		{"N/A", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseConcentration(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func sampleRows() []domain.RawReading {
	return []domain.RawReading{
		{LimsID: "Herndon 1", Element: "Tl", Concentration: "0.003", Type: "SAMP", Row: 2},
		{LimsID: "Herndon 1.1", Element: "Tl", Concentration: "0.006", Type: "SAMP", Row: 3},
		{LimsID: "DI Water", Element: "Tl", Concentration: "0.0001", Type: "SAMP", Row: 4},
		{LimsID: "HNO3 Blank", Element: "Tl", Concentration: "0.0002", Type: "SAMP", Row: 5},
		{LimsID: "Cal 1", Element: "Tl", Concentration: "0.5", Type: "STD", Row: 6},
		{LimsID: "Kern River 2", Element: "As", Concentration: "<LOD", Type: "SAMP", Row: 7},
		{LimsID: "", Element: "As", Concentration: "0.1", Row: 8},
		{LimsID: "Kern River 2", Element: "As", Concentration: "0.01", Type: "SAMP", Row: 9},
	}
}

func TestCleaner_Clean(t *testing.T) {
	readings, stats := NewCleaner(fullProfile, nil).Clean("March", sampleRows())

	require.Len(t, readings, 2)
	assert.Equal(t, "Herndon", readings[0].Location)
	assert.Equal(t, "March", readings[0].Month)
	assert.Equal(t, 2, readings[0].Row)
	assert.Equal(t, "Kern River", readings[1].Location)

	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, map[domain.DropReason]int{
		domain.DropDilution:   1,
		domain.DropBlank:      2,
		domain.DropStandard:   1,
		domain.DropNonNumeric: 1,
		domain.DropMissingID:  1,
	}, stats.Dropped)
	assert.Equal(t, stats.Total, stats.Kept+stats.DroppedTotal())
}

func TestCleaner_ProfileSwitches(t *testing.T) {
	tests := []struct {
		name     string
		profile  CleaningProfile
		wantKept int
	}{
		{"all filters", fullProfile, 2},
		{"numeric only", CleaningProfile{}, 6},
		{"standards kept", CleaningProfile{DropDilutions: true, DropBlanks: true, BlankMarkers: []string{"DI", "HNO"}}, 3},
		{"blanks kept", CleaningProfile{DropStandards: true, StandardType: "STD", DropDilutions: true}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings, _ := NewCleaner(tt.profile, nil).Clean("April", sampleRows())
			assert.Len(t, readings, tt.wantKept)
		})
	}
}

// Retained readings never violate the active filters.
func TestCleaner_RetainedInvariants(t *testing.T) {
	readings, _ := NewCleaner(fullProfile, nil).Clean("May", sampleRows())
	for _, r := range readings {
		assert.False(t, math.IsNaN(r.Concentration) || math.IsInf(r.Concentration, 0))
		assert.False(t, IsDilutionTrial(r.LimsID), r.LimsID)
		assert.False(t, IsBlank(r.LimsID, fullProfile.BlankMarkers), r.LimsID)
		assert.NotEqual(t, "STD", r.Type)
	}
}

func TestProfileFor(t *testing.T) {
	cfg := config.Default()
	month := config.MonthConfig{Key: "Kern", DropDilutions: true}

	p := ProfileFor(month, cfg.Analysis)
	assert.False(t, p.DropStandards)
	assert.True(t, p.DropDilutions)
	assert.False(t, p.DropBlanks)
	assert.Equal(t, "STD", p.StandardType)
	assert.Equal(t, []string{"DI", "HNO"}, p.BlankMarkers)
}
