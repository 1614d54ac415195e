// Package render draws bingo cards as PNG images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/bingocards/internal/cardgen"
)

// Card layout in pixels.
const (
	ImageSize   = 800
	GridSize    = 3
	CellSize    = 200
	GridOrigin  = 100
	TitleCenter = 50
	LineWidth   = 2
	CellPadding = 20
	LineHeight  = 24
)

// Options controls font selection.
type Options struct {
	// FontPath is a TrueType or OpenType file. Empty uses the embedded Go font.
	FontPath  string
	TextSize  float64
	TitleSize float64
}

// Renderer draws cards. It is safe for concurrent use; faces are created per call.
type Renderer struct {
	font      *opentype.Font
	textSize  float64
	titleSize float64
	logger    *log.Logger
}

// New loads the configured font, falling back to the embedded Go Regular face
// when the file cannot be read or parsed.
func New(opts Options, logger *log.Logger) (*Renderer, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &Renderer{
		textSize:  opts.TextSize,
		titleSize: opts.TitleSize,
		logger:    logger,
	}
	if r.textSize <= 0 {
		r.textSize = 18
	}
	if r.titleSize <= 0 {
		r.titleSize = 36
	}

	if opts.FontPath != "" {
		f, err := loadFont(opts.FontPath)
		if err == nil {
			r.font = f
			return r, nil
		}
		logger.Warn("using embedded font", "path", opts.FontPath, "error", err)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %w", err)
	}
	r.font = f
	return r, nil
}

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

func (r *Renderer) face(size float64) (font.Face, error) {
	return opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render draws participant's card: the name as a title above a 3×3 grid with one
// item per cell, each wrapped and centred in its cell.
func (r *Renderer) Render(participant string, card cardgen.Card) (*image.RGBA, error) {
	textFace, err := r.face(r.textSize)
	if err != nil {
		return nil, fmt.Errorf("creating text face: %w", err)
	}
	defer textFace.Close()
	titleFace, err := r.face(r.titleSize)
	if err != nil {
		return nil, fmt.Errorf("creating title face: %w", err)
	}
	defer titleFace.Close()

	img := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	title := font.MeasureString(titleFace, participant)
	m := titleFace.Metrics()
	titleHeight := m.Ascent + m.Descent
	drawText(img, titleFace, participant,
		fixed.I(ImageSize/2)-title/2,
		fixed.I(TitleCenter)-titleHeight/2+m.Ascent)

	drawGrid(img)

	ascent := textFace.Metrics().Ascent
	for i, it := range card {
		if i >= GridSize*GridSize {
			break
		}
		cellX := GridOrigin + (i%GridSize)*CellSize
		cellY := GridOrigin + (i/GridSize)*CellSize

		lines := Wrap(textFace, it.Text, fixed.I(CellSize-CellPadding))
		top := fixed.I(cellY) + (fixed.I(CellSize)-fixed.I(len(lines)*LineHeight))/2
		for j, line := range lines {
			width := font.MeasureString(textFace, line)
			x := fixed.I(cellX) + (fixed.I(CellSize)-width)/2
			drawText(img, textFace, line, x, top+fixed.I(j*LineHeight)+ascent)
		}
	}
	return img, nil
}

func drawText(dst draw.Image, face font.Face, s string, x, baseline fixed.Int26_6) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: baseline},
	}
	d.DrawString(s)
}

func drawGrid(img *image.RGBA) {
	black := image.NewUniform(color.Black)
	end := GridOrigin + GridSize*CellSize
	half := LineWidth / 2
	for i := 0; i <= GridSize; i++ {
		pos := GridOrigin + i*CellSize
		horizontal := image.Rect(GridOrigin-half, pos-half, end+half, pos-half+LineWidth)
		vertical := image.Rect(pos-half, GridOrigin-half, pos-half+LineWidth, end+half)
		draw.Draw(img, horizontal, black, image.Point{}, draw.Src)
		draw.Draw(img, vertical, black, image.Point{}, draw.Src)
	}
}
