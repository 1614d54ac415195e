// Package export packages rendered cards into shareable artifacts: a PDF
// booklet, a zip archive and a YAML manifest of the run.
package export

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/lox/bingocards/internal/fileutil"
)

// ListImages returns the PNG files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// WritePDF lays out every PNG in imageDir on its own A4 page, scaled to fit the
// page with its aspect ratio kept and centred.
func WritePDF(imageDir, pdfPath string, created time.Time) error {
	images, err := ListImages(imageDir)
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}
	if len(images) == 0 {
		return errors.New("no images to put in the PDF")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pageW, pageH := pdf.GetPageSize()

	for _, path := range images {
		w, h, err := imageSize(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}
		x, y, scaledW, scaledH := Fit(float64(w), float64(h), pageW, pageH)

		pdf.AddPage()
		pdf.ImageOptions(path, x, y, scaledW, scaledH, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("adding %s: %w", filepath.Base(path), err)
		}
	}

	return fileutil.WriteAtomic(pdfPath, 0o644, func(w io.Writer) error {
		return pdf.Output(w)
	})
}

// Fit scales a w×h image to the largest size that fits a pageW×pageH page and
// returns its centred position and scaled dimensions.
func Fit(w, h, pageW, pageH float64) (x, y, scaledW, scaledH float64) {
	factor := min(pageW/w, pageH/h)
	scaledW = w * factor
	scaledH = h * factor
	return (pageW - scaledW) / 2, (pageH - scaledH) / 2, scaledW, scaledH
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
