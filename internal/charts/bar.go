package charts

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Bar is one value of a grouped bar chart.
type Bar struct {
	Group  string
	Series string
	Value  float64
}

// Limit is a horizontal reference line drawn across the chart.
type Limit struct {
	Value float64
	Label string
}

// BarOptions describes a grouped bar chart.
type BarOptions struct {
	Title  string
	XLabel string
	YLabel string
	// Groups and Series fix the x and hue order. Empty means sorted by name.
	Groups []string
	Series []string
	Limit  *Limit
	Style  Style
}

// groupWidth is the share of one x slot covered by all bars of a group.
const groupWidth = 0.8

// GroupedBar draws one cluster of bars per group with one bar per series.
// Missing (group, series) combinations are left empty.
func GroupedBar(bars []Bar, opts BarOptions) (*plot.Plot, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	groups := opts.Groups
	if len(groups) == 0 {
		groups = distinct(bars, func(b Bar) string { return b.Group })
	}
	series := opts.Series
	if len(series) == 0 {
		series = distinct(bars, func(b Bar) string { return b.Series })
	}

	groupIdx := make(map[string]int, len(groups))
	for i, g := range groups {
		groupIdx[g] = i
	}
	values := make(map[string]plotter.Values, len(series))
	for _, s := range series {
		values[s] = make(plotter.Values, len(groups))
	}
	for _, b := range bars {
		vals, ok := values[b.Series]
		if !ok {
			continue
		}
		if gi, ok := groupIdx[b.Group]; ok {
			vals[gi] = b.Value
		}
	}

	p := newPlot(opts.Title, opts.XLabel, opts.YLabel)
	addHorizontalGrid(p)

	slot := barSlotWidth(opts.Style, len(groups))
	width := slot * groupWidth / vg.Length(len(series))
	for i, s := range series {
		chart, err := plotter.NewBarChart(values[s], width)
		if err != nil {
			return nil, fmt.Errorf("failed to build bars for %s: %w", s, err)
		}
		chart.LineStyle.Width = vg.Length(0)
		chart.Color = SeriesColor(i)
		chart.Offset = vg.Length(float64(i)-float64(len(series)-1)/2) * width
		p.Add(chart)
		p.Legend.Add(s, chart)
	}

	if opts.Limit != nil {
		addLimit(p, *opts.Limit)
	}

	p.Legend.Top = true
	p.NominalX(groups...)
	rotateTicks(p, opts.Style)
	return p, nil
}

// SortedBar draws a single series in the order given.
func SortedBar(labels []string, values []float64, opts BarOptions) (*plot.Plot, error) {
	if len(labels) == 0 {
		return nil, ErrNoData
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("sorted bar: %d labels for %d values", len(labels), len(values))
	}

	p := newPlot(opts.Title, opts.XLabel, opts.YLabel)
	addHorizontalGrid(p)

	width := barSlotWidth(opts.Style, len(labels)) * groupWidth
	chart, err := plotter.NewBarChart(plotter.Values(values), width)
	if err != nil {
		return nil, fmt.Errorf("failed to build bars: %w", err)
	}
	chart.LineStyle.Width = vg.Length(0)
	chart.Color = SeriesColor(0)
	p.Add(chart)

	if opts.Limit != nil {
		addLimit(p, *opts.Limit)
	}

	p.NominalX(labels...)
	rotateTicks(p, opts.Style)
	return p, nil
}

// addLimit draws a dashed red line at limit and makes sure the y axis
// reaches it.
func addLimit(p *plot.Plot, limit Limit) {
	line := plotter.NewFunction(func(float64) float64 { return limit.Value })
	line.Color = limitColor
	line.Width = vg.Points(1)
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	p.Add(line)
	if limit.Label != "" {
		p.Legend.Add(limit.Label, line)
	}
	if p.Y.Max < limit.Value*1.1 {
		p.Y.Max = limit.Value * 1.1
	}
	if p.Y.Min > 0 {
		p.Y.Min = 0
	}
}

// barSlotWidth estimates the drawn width of one x slot so bars fill their
// group regardless of figure size.
func barSlotWidth(style Style, slots int) vg.Length {
	w := style.Width
	if w <= 0 {
		w = 14 * vg.Inch
	}
	if slots < 1 {
		slots = 1
	}
	// leave room for the y axis and padding
	return (w - vg.Inch) / vg.Length(slots)
}

func distinct(bars []Bar, key func(Bar) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range bars {
		k := key(b)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
