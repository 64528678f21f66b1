// Package exporter writes the cleaned readings, mean tables and cleaning
// counts of a run to CSV and SQLite.
//
// CSVWriter prefixes files with a UTF-8 BOM so Excel opens them correctly.
// SQLiteStore uses the pure Go modernc.org/sqlite driver and recreates its
// tables on every run.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths)
//	err := w.WriteReadings(exporter.ReadingsFile, readings)
//
//	store, err := exporter.OpenSQLite(ctx, paths.GetExportPath(exporter.DatabaseFile), logger)
//	defer store.Close()
//	err = store.SaveMeans(ctx, "heatmaps", rows)
package exporter
