package charts

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// BoxGroup is the set of values drawn as one box.
type BoxGroup struct {
	Name   string
	Values []float64
}

// BoxResult is a box plot and the number of values a log axis could not show.
type BoxResult struct {
	Plot               *plot.Plot
	DroppedNonPositive int
}

// BoxPlot draws one box per group in the given order. On a log scale values
// <= 0 cannot be placed and are dropped; a group left empty keeps its tick
// but has no box.
func BoxPlot(groups []BoxGroup, logScale bool, title, xLabel, yLabel string) (*BoxResult, error) {
	p := newPlot(title, xLabel, yLabel)
	addHorizontalGrid(p)

	res := &BoxResult{Plot: p}
	names := make([]string, len(groups))
	drawn := 0
	for i, g := range groups {
		names[i] = g.Name

		values := g.Values
		if logScale {
			values = make([]float64, 0, len(g.Values))
			for _, v := range g.Values {
				if v > 0 {
					values = append(values, v)
				} else {
					res.DroppedNonPositive++
				}
			}
		}
		if len(values) == 0 {
			continue
		}

		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(values))
		if err != nil {
			return nil, fmt.Errorf("failed to build box for %s: %w", g.Name, err)
		}
		box.FillColor = SeriesColor(i)
		p.Add(box)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}

	if logScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.NominalX(names...)
	return res, nil
}
