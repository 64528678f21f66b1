// Package shared holds code used by more than one internal package that does
// not belong to any of them.
//
// The testutil subpackage provides the fixtures the package tests share:
// laboratory workbooks written with excelize and a slog handler that
// captures records for assertions.
//
//	logger, logs := testutil.NewTestLogger(t)
//	path := testutil.WriteLabWorkbook(t, dir, "March2025_Data.xlsx", rows)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "no readings kept")
package shared
