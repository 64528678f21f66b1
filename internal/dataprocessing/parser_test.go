package dataprocessing

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CayleighSitchon/water-quality-analysis/internal/shared/testutil"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	return testutil.WriteWorkbook(t, filepath.Join(t.TempDir(), "Test_Data.xlsx"), sheet, rows)
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, "", [][]interface{}{
		{" Lims ID ", "Element Label ", " Concentration", "Type"},
		{"Herndon 1", "Tl", 0.0031, "SAMP"},
		{"Herndon 1", "As", "<LOD", "SAMP"},
		{},
		{"Cal Std", "Tl", 0.5, "STD"},
	})

	res, err := ParseWorkbook(path, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.HeaderRow)
	assert.True(t, res.HasType)
	require.Len(t, res.Rows, 3, "blank rows are skipped")

	first := res.Rows[0]
	assert.Equal(t, "Herndon 1", first.LimsID)
	assert.Equal(t, "Tl", first.Element)
	assert.Equal(t, "0.0031", first.Concentration)
	assert.Equal(t, "SAMP", first.Type)
	assert.Equal(t, 2, first.Row)

	assert.Equal(t, "<LOD", res.Rows[1].Concentration)
	assert.Equal(t, 5, res.Rows[2].Row)
}

func TestParseWorkbook_HeaderVariants(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]interface{}
		wantElement string
		wantHeader  int
		wantType    bool
	}{
		{
			name: "element column without type",
			rows: [][]interface{}{
				{"Lims ID", "Element", "Concentration"},
				{"Kern River 2", "Thallium", 0.001},
			},
			wantElement: "Thallium",
			wantHeader:  1,
		},
		{
			name: "element label preferred over element",
			rows: [][]interface{}{
				{"Lims ID", "Element", "Element Label", "Concentration", "Type"},
				{"Kern River 2", "Thallium", "Tl", 0.001, "SAMP"},
			},
			wantElement: "Tl",
			wantHeader:  1,
			wantType:    true,
		},
		{
			name: "title rows above header",
			rows: [][]interface{}{
				{"ICP-MS export"},
				{"run 42"},
				{"lims id", "ELEMENT LABEL", "concentration"},
				{"Tollhouse 3", "Pb", 0.02},
			},
			wantElement: "Pb",
			wantHeader:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseWorkbook(writeWorkbook(t, "", tt.rows), ParseOptions{})
			require.NoError(t, err)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, tt.wantElement, res.Rows[0].Element)
			assert.Equal(t, tt.wantHeader, res.HeaderRow)
			assert.Equal(t, tt.wantType, res.HasType)
		})
	}
}

func TestParseWorkbook_Errors(t *testing.T) {
	t.Run("missing concentration column", func(t *testing.T) {
		path := writeWorkbook(t, "", [][]interface{}{
			{"Lims ID", "Element"},
			{"Herndon 1", "Tl"},
		})
		_, err := ParseWorkbook(path, ParseOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingColumn))
		assert.Contains(t, err.Error(), "Concentration")
	})

	t.Run("no data sheet", func(t *testing.T) {
		path := writeWorkbook(t, "", [][]interface{}{{"notes"}})
		_, err := ParseWorkbook(path, ParseOptions{})
		assert.True(t, errors.Is(err, ErrNoDataSheet))
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := writeWorkbook(t, "Data", [][]interface{}{
			{"Lims ID", "Element", "Concentration"},
		})
		_, err := ParseWorkbook(path, ParseOptions{SheetName: "Results"})
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), ParseOptions{})
		assert.Error(t, err)
	})
}

func TestParseWorkbook_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Results", [][]interface{}{
		{"Lims ID", "Element", "Concentration"},
		{"Herndon 1", "Tl", 0.002},
	})

	res, err := ParseWorkbook(path, ParseOptions{SheetName: "Results"})
	require.NoError(t, err)
	assert.Equal(t, "Results", res.Sheet)
	assert.Len(t, res.Rows, 1)
}
