package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Style sets the figure size and raster resolution of a chart.
type Style struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
	// TickRotation rotates x tick labels, in degrees.
	TickRotation float64
}

// Figure returns a style for a figure of w by h inches.
func Figure(w, h float64, dpi int) Style {
	return Style{Width: vg.Length(w) * vg.Inch, Height: vg.Length(h) * vg.Inch, DPI: dpi}
}

// Rotated returns a copy of s with x tick labels rotated by deg degrees.
func (s Style) Rotated(deg float64) Style {
	s.TickRotation = deg
	return s
}

// seriesColors follows the tab10 palette so hue order reads the same as the
// lab's earlier seaborn charts.
var seriesColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	color.RGBA{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	color.RGBA{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff},
	color.RGBA{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff},
}

// SeriesColor returns the colour of the i-th series.
func SeriesColor(i int) color.Color {
	return seriesColors[i%len(seriesColors)]
}

var (
	limitColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	gridColor  = color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xb3}
)

// newPlot creates a plot with the title and axis labels set.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.Text = yLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	return p
}

// addHorizontalGrid draws dashed horizontal grid lines only.
func addHorizontalGrid(p *plot.Plot) {
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = gridColor
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(grid)
}

// rotateTicks rotates the x tick labels when the style asks for it.
func rotateTicks(p *plot.Plot, style Style) {
	if style.TickRotation == 0 {
		return
	}
	p.X.Tick.Label.Rotation = style.TickRotation * math.Pi / 180
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// WritePNG renders p as a PNG at the style's size and DPI.
func WritePNG(w io.Writer, p *plot.Plot, style Style) error {
	if style.DPI <= 0 {
		style.DPI = vgimg.DefaultDPI
	}
	c := vgimg.NewWith(
		vgimg.UseWH(style.Width, style.Height),
		vgimg.UseDPI(style.DPI),
	)
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes p to path, creating parent directories.
func SavePNG(path string, p *plot.Plot, style Style) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePNG(f, p, style); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
