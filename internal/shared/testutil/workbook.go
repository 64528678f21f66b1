package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// LabHeader is the header row of a laboratory export.
var LabHeader = []interface{}{"Lims ID", "Element Label", "Concentration", "Type"}

// WriteWorkbook saves rows starting at A1 of sheet to path and returns path.
// An empty sheet keeps the default first sheet. Parent directories are
// created.
func WriteWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" {
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	} else {
		sheet = f.GetSheetName(0)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteLabWorkbook writes rows under LabHeader to dir/name.
func WriteLabWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	all := append([][]interface{}{LabHeader}, rows...)
	return WriteWorkbook(t, filepath.Join(dir, name), "", all)
}
