// Package report assembles rendered chart images into a multi-page PDF.
package report

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/CayleighSitchon/water-quality-analysis/internal/files"
)

// ErrNoImages is returned when there is nothing to put in the report.
var ErrNoImages = errors.New("no images found to include in the report")

// PageWidth is the width of every report page. The height follows the
// aspect ratio of the first image; later images are scaled to fit.
const PageWidth = 11 * vg.Inch

// WritePDF writes one page per image, in order, and returns the page count.
func WritePDF(w io.Writer, images []string) (int, error) {
	if len(images) == 0 {
		return 0, ErrNoImages
	}

	var canvas *vgpdf.Canvas
	for i, path := range images {
		img, err := loadPNG(path)
		if err != nil {
			return 0, err
		}

		if canvas == nil {
			canvas = vgpdf.New(PageWidth, pageHeight(img))
		} else {
			canvas.NextPage()
		}

		pw, ph := canvas.Size()
		canvas.DrawImage(fitRect(img.Bounds(), pw, ph), img)

		slog.Debug("Added report page",
			slog.Int("page", i+1),
			slog.String("image", filepath.Base(path)))
	}

	if _, err := canvas.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write pdf: %w", err)
	}
	return len(images), nil
}

// BuildPDF writes the report for images to out.
func BuildPDF(images []string, out string) (int, error) {
	if len(images) == 0 {
		return 0, ErrNoImages
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return 0, fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("failed to create report %s: %w", out, err)
	}
	pages, err := WritePDF(f, images)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return 0, err
	}
	return pages, nil
}

// BuildFromDir builds the report from every PNG in dir, in file name order.
func BuildFromDir(dir, out string) (int, error) {
	images, err := files.NewDiscovery("").FindImages(dir, ".png")
	if err != nil {
		return 0, err
	}
	return BuildPDF(files.Paths(images), out)
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image %s is empty", path)
	}
	return img, nil
}

func pageHeight(img image.Image) vg.Length {
	b := img.Bounds()
	return PageWidth * vg.Length(b.Dy()) / vg.Length(b.Dx())
}

// fitRect centres an image of bounds b on a page of pw by ph, keeping its
// aspect ratio.
func fitRect(b image.Rectangle, pw, ph vg.Length) vg.Rectangle {
	iw, ih := vg.Length(b.Dx()), vg.Length(b.Dy())
	scale := pw / iw
	if s := ph / ih; s < scale {
		scale = s
	}
	w, h := iw*scale, ih*scale
	x0, y0 := (pw-w)/2, (ph-h)/2
	return vg.Rectangle{
		Min: vg.Point{X: x0, Y: y0},
		Max: vg.Point{X: x0 + w, Y: y0 + h},
	}
}
