package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records and attributes", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("rows parsed", slog.Int("rows", 9))
		logger.With(slog.String("month", "March")).Warn("no readings kept")

		require.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("rows parsed"))
		assert.True(t, handler.ContainsAttr("rows", int64(9)))
		assert.True(t, handler.ContainsAttr("month", "March"))
		AssertLogContains(t, handler, slog.LevelWarn, "no readings")
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(nil)

		logger.Debug("debug")
		logger.Info("info")
		logger.Error("error")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 0)
	})
}

func TestWriteLabWorkbook(t *testing.T) {
	path := WriteLabWorkbook(t, filepath.Join(t.TempDir(), "data"), "March2025_Data.xlsx", [][]interface{}{
		{"Herndon 1", "Tl", 0.0031, "SAMP"},
	})

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Lims ID", "Element Label", "Concentration", "Type"}, rows[0])
	assert.Equal(t, "Herndon 1", rows[1][0])
}
