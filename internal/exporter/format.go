package exporter

import (
	"strconv"
)

// formatConcentration keeps full precision; lab values are often below 0.001.
func formatConcentration(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
