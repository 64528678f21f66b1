package report

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 0xff, A: 0xff})
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestWritePDF_OnePagePerImage(t *testing.T) {
	dir := t.TempDir()
	images := []string{
		writePNG(t, dir, "a.png", 120, 80),
		writePNG(t, dir, "b.png", 60, 90),
		writePNG(t, dir, "c.png", 100, 100),
	}

	var buf bytes.Buffer
	pages, err := WritePDF(&buf, images)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Len(t, pageObject.FindAll(buf.Bytes(), -1), 3)
}

func TestBuildFromDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "TopElements_Oct2024_Heatmap.png", 40, 30)
	writePNG(t, dir, "TopElements_Jan2025_Heatmap.png", 40, 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	out := filepath.Join(t.TempDir(), "out", "WaterQuality_Report.pdf")
	pages, err := BuildFromDir(dir, out)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(data, -1), 2)
}

func TestBuildFromDir_NoImages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "WaterQuality_Report.pdf")
	_, err := BuildFromDir(t.TempDir(), out)
	assert.True(t, errors.Is(err, ErrNoImages))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no report is written")
}

func TestBuildPDF_CorruptImage(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "a.png", 10, 10)
	bad := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0644))

	out := filepath.Join(dir, "report.pdf")
	_, err := BuildPDF([]string{good, bad}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.png")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "partial report is removed")
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		want   vg.Rectangle
	}{
		{
			name:   "same aspect fills page",
			bounds: image.Rect(0, 0, 200, 100),
			want:   vg.Rectangle{Max: vg.Point{X: 100, Y: 50}},
		},
		{
			name:   "tall image is pillarboxed",
			bounds: image.Rect(0, 0, 50, 100),
			want:   vg.Rectangle{Min: vg.Point{X: 37.5}, Max: vg.Point{X: 62.5, Y: 50}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitRect(tt.bounds, 100, 50)
			assert.InDelta(t, float64(tt.want.Min.X), float64(got.Min.X), 1e-9)
			assert.InDelta(t, float64(tt.want.Min.Y), float64(got.Min.Y), 1e-9)
			assert.InDelta(t, float64(tt.want.Max.X), float64(got.Max.X), 1e-9)
			assert.InDelta(t, float64(tt.want.Max.Y), float64(got.Max.Y), 1e-9)
		})
	}
}
