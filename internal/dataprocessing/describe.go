package dataprocessing

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gota/gota/dataframe"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// describeRow is the frame layout used for summaries.
type describeRow struct {
	LimsID        string  `dataframe:"Lims ID"`
	Element       string  `dataframe:"Element"`
	Location      string  `dataframe:"Location"`
	Concentration float64 `dataframe:"Concentration"`
}

// Frame loads readings into a gota data frame.
func Frame(readings []domain.Reading) dataframe.DataFrame {
	rows := make([]describeRow, len(readings))
	for i, r := range readings {
		rows[i] = describeRow{
			LimsID:        r.LimsID,
			Element:       r.Element,
			Location:      r.Location,
			Concentration: r.Concentration,
		}
	}
	return dataframe.LoadStructs(rows)
}

// Describe writes a summary of one month: the first rows, the shape, the
// concentration statistics and the cleaning counts.
func Describe(w io.Writer, ds domain.MonthDataset) error {
	fmt.Fprintf(w, "== %s (%s)\n", ds.Label, ds.Source)

	if len(ds.Readings) == 0 {
		fmt.Fprintln(w, "no readings retained")
	} else {
		df := Frame(ds.Readings)
		if df.Err != nil {
			return fmt.Errorf("failed to build frame for %s: %w", ds.Key, df.Err)
		}

		nrow, ncol := df.Dims()
		fmt.Fprintf(w, "rows=%d cols=%d\n", nrow, ncol)

		head := df
		if nrow > 5 {
			head = df.Subset([]int{0, 1, 2, 3, 4})
		}
		fmt.Fprintln(w, head)

		desc := df.Select([]string{"Concentration"}).Describe()
		if desc.Err != nil {
			return fmt.Errorf("failed to describe %s: %w", ds.Key, desc.Err)
		}
		fmt.Fprintln(w, desc)
	}

	reasons := make([]string, 0, len(ds.Stats.Dropped))
	for r := range ds.Stats.Dropped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	fmt.Fprintf(w, "total=%d kept=%d\n", ds.Stats.Total, ds.Stats.Kept)
	for _, r := range reasons {
		fmt.Fprintf(w, "dropped %-12s %d\n", r, ds.Stats.Dropped[domain.DropReason(r)])
	}
	return nil
}
