// Package dataprocessing turns monthly laboratory workbooks into cleaned
// readings and mean tables.
//
// # Data Flow
//
//	Workbook → ParseWorkbook → RawReading → Cleaner → Reading → GroupMean → Pivot
//
// ParseWorkbook reads the sheet with excelize, trims header names and maps
// the Lims ID, Element (or Element Label), Concentration and optional Type
// columns. Concentration cells stay raw until the Cleaner coerces them.
//
// The Cleaner applies a per-month CleaningProfile: standard rows, dilution
// trials (IDs containing a decimal number such as Tollhouse1.1) and blanks
// (IDs containing DI or HNO) are discarded, then non-numeric concentrations.
// Every discarded row is counted by reason in CleaningStats.
//
// GroupMean averages retained values per key. TopElements ranks elements by
// mean concentration. Pivot reshapes mean rows into a sorted element by
// location matrix with NaN for missing combinations, and Unpivot reverses it.
package dataprocessing
