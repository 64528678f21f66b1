package charts

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

var testStyle = Figure(4, 3, 50)

func renderSize(t *testing.T, p *plot.Plot, style Style) (int, int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p, style))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func testMatrix() domain.Matrix {
	return domain.Matrix{
		Rows: []string{"As", "Tl"},
		Cols: []string{"Herndon", "Kern River", "Tollhouse"},
		Values: [][]float64{
			{0.010, math.NaN(), 0.030},
			{0.003, 0.001, math.NaN()},
		},
	}
}

func TestWritePNG_HonoursDPI(t *testing.T) {
	p, err := Heatmap(testMatrix(), "t", "Location", "Element")
	require.NoError(t, err)

	w, h := renderSize(t, p, testStyle)
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)

	w, h = renderSize(t, p, Figure(4, 3, 100))
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestHeatmap(t *testing.T) {
	tests := []struct {
		name    string
		matrix  domain.Matrix
		wantErr bool
	}{
		{name: "sparse matrix", matrix: testMatrix()},
		{
			name:   "single cell",
			matrix: domain.Matrix{Rows: []string{"Tl"}, Cols: []string{"Herndon"}, Values: [][]float64{{0.002}}},
		},
		{
			name:   "constant values",
			matrix: domain.Matrix{Rows: []string{"Tl", "As"}, Cols: []string{"A"}, Values: [][]float64{{1}, {1}}},
		},
		{name: "empty matrix", matrix: domain.Matrix{}, wantErr: true},
		{
			name:    "all missing",
			matrix:  domain.Matrix{Rows: []string{"Tl"}, Cols: []string{"A"}, Values: [][]float64{{math.NaN()}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Heatmap(tt.matrix, "Average Concentration", "Location", "Element")
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoData))
				return
			}
			require.NoError(t, err)
			renderSize(t, p, testStyle)
		})
	}
}

func TestAnnotationCount(t *testing.T) {
	assert.Equal(t, 4, AnnotationCount(testMatrix()))
}

func TestGroupedBar(t *testing.T) {
	bars := []Bar{
		{Group: "Herndon", Series: "March", Value: 0.003},
		{Group: "Herndon", Series: "April", Value: 0.004},
		{Group: "Kern River", Series: "March", Value: 0.001},
	}

	p, err := GroupedBar(bars, BarOptions{
		Title:  "Average Thallium (Tl) Concentration by Location and Month",
		Series: []string{"March", "April"},
		Limit:  &Limit{Value: 0.005, Label: "EPA Limit"},
		Style:  testStyle.Rotated(45),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Y.Max, 0.005, "axis reaches the limit line")
	assert.Equal(t, 0.0, p.Y.Min)
	renderSize(t, p, testStyle.Rotated(45))

	_, err = GroupedBar(nil, BarOptions{})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestSortedBar(t *testing.T) {
	p, err := SortedBar([]string{"Kern River", "Herndon"}, []float64{0.005, 0.003}, BarOptions{Style: testStyle})
	require.NoError(t, err)
	renderSize(t, p, testStyle)

	_, err = SortedBar([]string{"a"}, []float64{1, 2}, BarOptions{})
	assert.Error(t, err)

	_, err = SortedBar(nil, nil, BarOptions{})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestBoxPlot(t *testing.T) {
	groups := []BoxGroup{
		{Name: "Ca", Values: []float64{12, 13, 15, 11}},
		{Name: "Tl", Values: []float64{0.001, 0.002, 0, -0.0001}},
		{Name: "Pb", Values: []float64{0, 0}},
	}

	res, err := BoxPlot(groups, true, "Distribution", "Element", "Concentration (ppm)")
	require.NoError(t, err)
	assert.Equal(t, 4, res.DroppedNonPositive)
	renderSize(t, res.Plot, testStyle)

	res, err = BoxPlot(groups, false, "Distribution", "Element", "Concentration (ppm)")
	require.NoError(t, err)
	assert.Zero(t, res.DroppedNonPositive)

	_, err = BoxPlot([]BoxGroup{{Name: "Pb", Values: []float64{0}}}, true, "", "", "")
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestSavePNG_CreatesDirectories(t *testing.T) {
	p, err := SortedBar([]string{"a"}, []float64{1}, BarOptions{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plots", "nested", "x.png")
	require.NoError(t, SavePNG(path, p, testStyle))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
