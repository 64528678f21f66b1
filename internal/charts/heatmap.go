package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// AnnotationFormat formats the value printed in each heatmap cell.
const AnnotationFormat = "%.3f"

var nanColor = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}

// matrixGrid adapts a Matrix to plotter.GridXYZ. The first matrix row is
// drawn at the top.
type matrixGrid struct {
	m domain.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	return len(g.m.Cols), len(g.m.Rows)
}

func (g matrixGrid) X(c int) float64 {
	return float64(c)
}

func (g matrixGrid) Y(r int) float64 {
	return float64(r)
}

func (g matrixGrid) Z(c, r int) float64 {
	return g.m.Values[len(g.m.Rows)-1-r][c]
}

// Heatmap draws m with one cell per element and location, each annotated
// with its value. Missing cells are drawn grey and left blank.
func Heatmap(m domain.Matrix, title, xLabel, yLabel string) (*plot.Plot, error) {
	if m.Empty() {
		return nil, ErrNoData
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, row := range m.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	if math.IsInf(min, 1) {
		return nil, fmt.Errorf("heatmap %q: %w", title, ErrNoData)
	}
	if min == max {
		max = min + 1
	}

	cm := moreland.Kindlmann()
	cm.SetMin(min)
	cm.SetMax(max)

	grid := matrixGrid{m: m}
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = min, max
	hm.NaN = nanColor

	p := newPlot(title, xLabel, yLabel)
	p.Add(hm)

	var light, dark plotter.XYLabels
	nc, nr := grid.Dims()
	for c := 0; c < nc; c++ {
		for r := 0; r < nr; r++ {
			v := grid.Z(c, r)
			if math.IsNaN(v) {
				continue
			}
			target := &dark
			if (v-min)/(max-min) < 0.55 {
				target = &light
			}
			target.XYs = append(target.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			target.Labels = append(target.Labels, fmt.Sprintf(AnnotationFormat, v))
		}
	}
	for _, set := range []struct {
		labels plotter.XYLabels
		color  color.Color
	}{{light, color.White}, {dark, color.Black}} {
		if len(set.labels.XYs) == 0 {
			continue
		}
		labels, err := plotter.NewLabels(set.labels)
		if err != nil {
			return nil, fmt.Errorf("failed to annotate heatmap: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
			labels.TextStyle[i].Color = set.color
			labels.TextStyle[i].Font.Size = vg.Points(9)
		}
		p.Add(labels)
	}

	p.NominalX(m.Cols...)
	rows := make([]string, len(m.Rows))
	for i, name := range m.Rows {
		rows[len(m.Rows)-1-i] = name
	}
	p.NominalY(rows...)

	return p, nil
}

// AnnotationCount returns how many cells of m carry a value label.
func AnnotationCount(m domain.Matrix) int {
	n := 0
	for _, row := range m.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}
