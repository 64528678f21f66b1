package exporter

import (
	"sort"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// Export file names.
const (
	ReadingsFile = "readings.csv"
	StatsFile    = "cleaning_stats.csv"
)

// MeansFile names the CSV of one product's mean table.
func MeansFile(product string) string {
	return product + "_means.csv"
}

var (
	readingHeaders = []string{"Month", "Lims ID", "Location", "Element", "Concentration", "Type", "Source Row"}
	meanHeaders    = []string{"Element", "Group", "Month", "Mean", "Count"}
	statsHeaders   = []string{"Month", "Total", "Kept", "Reason", "Dropped"}
)

// WriteReadings streams cleaned readings to filePath.
func (w *CSVWriter) WriteReadings(filePath string, readings []domain.Reading) error {
	stream, err := w.CreateStreamWriter(filePath, readingHeaders)
	if err != nil {
		return err
	}
	for _, r := range readings {
		err := stream.WriteRecord([]string{
			r.Month,
			r.LimsID,
			r.Location,
			r.Element,
			formatConcentration(r.Concentration),
			r.Type,
			formatInt(r.Row),
		})
		if err != nil {
			stream.Close()
			return err
		}
	}
	return stream.Close()
}

// WriteMeans exports a mean table.
func (w *CSVWriter) WriteMeans(filePath string, rows []domain.MeanRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Element,
			r.Group,
			r.Month,
			formatConcentration(r.Mean),
			formatInt(r.Count),
		}
	}
	return w.WriteSimpleCSV(filePath, meanHeaders, records)
}

// WriteCleaningStats exports one row per month and drop reason. Months
// without drops get a single row with an empty reason.
func (w *CSVWriter) WriteCleaningStats(filePath string, datasets []domain.MonthDataset) error {
	var records [][]string
	for _, ds := range datasets {
		reasons := make([]string, 0, len(ds.Stats.Dropped))
		for r := range ds.Stats.Dropped {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)

		base := []string{ds.Label, formatInt(ds.Stats.Total), formatInt(ds.Stats.Kept)}
		if len(reasons) == 0 {
			records = append(records, append(base, "", "0"))
			continue
		}
		for _, r := range reasons {
			row := append(append([]string{}, base...), r, formatInt(ds.Stats.Dropped[domain.DropReason(r)]))
			records = append(records, row)
		}
	}
	return w.WriteSimpleCSV(filePath, statsHeaders, records)
}
