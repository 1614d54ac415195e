package render

import (
	"context"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{}, quietLogger())
	require.NoError(t, err)
	return r
}

func sampleSet(t *testing.T) *cardgen.CardSet {
	t.Helper()
	var rows []catalog.Row
	for _, o := range []string{"Anna", "Bram", "Cees", "Dirk/Jan"} {
		for i := 0; i < 3; i++ {
			rows = append(rows, catalog.Row{
				Owner:    o,
				Text:     fmt.Sprintf("Has visited more than %d countries on a bicycle", i+3),
				Question: fmt.Sprintf("%s-%d", o, i),
			})
		}
	}
	c, err := catalog.Build(rows)
	require.NoError(t, err)
	set, err := cardgen.New(c, cardgen.Options{Seed: 1, MaxAttempts: -1}, quietLogger()).
		GenerateAll(context.Background(), c.Participants())
	require.NoError(t, err)
	return set
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestRenderLayout(t *testing.T) {
	set := sampleSet(t)
	card, ok := set.Get("Anna")
	require.True(t, ok)

	img, err := newRenderer(t).Render("Anna", card)
	require.NoError(t, err)
	assert.Equal(t, ImageSize, img.Bounds().Dx())
	assert.Equal(t, ImageSize, img.Bounds().Dy())

	assert.True(t, isWhite(img.At(5, 5)), "background should be white")
	assert.True(t, isWhite(img.At(ImageSize-5, ImageSize-5)))

	// Grid lines at every cell boundary.
	for i := 0; i <= GridSize; i++ {
		pos := GridOrigin + i*CellSize
		assert.True(t, isBlack(img.At(pos, GridOrigin+CellSize/2)), "vertical line %d", i)
		assert.True(t, isBlack(img.At(GridOrigin+CellSize/2, pos)), "horizontal line %d", i)
	}

	// The title band and every cell should contain ink.
	assert.True(t, hasInk(img, 0, 0, ImageSize, GridOrigin-LineWidth), "title")
	for i := 0; i < GridSize*GridSize; i++ {
		x := GridOrigin + (i%GridSize)*CellSize
		y := GridOrigin + (i/GridSize)*CellSize
		assert.True(t, hasInk(img, x+LineWidth, y+LineWidth, x+CellSize-LineWidth, y+CellSize-LineWidth), "cell %d", i)
	}
}

func hasInk(img interface{ At(x, y int) color.Color }, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if !isWhite(img.At(x, y)) {
				return true
			}
		}
	}
	return false
}

func TestNewFallsBackToEmbeddedFont(t *testing.T) {
	r, err := New(Options{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, r.font)
	assert.Equal(t, 18.0, r.textSize)
	assert.Equal(t, 36.0, r.titleSize)
}

func TestWrap(t *testing.T) {
	r := newRenderer(t)
	face, err := r.face(18)
	require.NoError(t, err)
	defer face.Close()

	maxWidth := fixed.I(CellSize - CellPadding)
	text := "Has been on a hot air balloon ride over the Serengeti at sunrise with family"
	lines := Wrap(face, text, maxWidth)
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, measure(face, l), maxWidth, "line %q too wide", l)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))

	assert.Empty(t, Wrap(face, "   ", maxWidth))
	assert.Equal(t, []string{"short"}, Wrap(face, "short", maxWidth))
}

func TestWrapBreaksLongWord(t *testing.T) {
	r := newRenderer(t)
	face, err := r.face(18)
	require.NoError(t, err)
	defer face.Close()

	maxWidth := fixed.I(CellSize - CellPadding)
	word := strings.Repeat("W", 60)
	lines := Wrap(face, "a "+word, maxWidth)
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "a", lines[0])
	assert.Equal(t, word, strings.Join(lines[1:], ""))
	for _, l := range lines {
		assert.LessOrEqual(t, measure(face, l), maxWidth)
	}
}

func TestFileName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Anna__bingo_card.png", FileName("Anna", used))
	assert.Equal(t, "anna_2__bingo_card.png", FileName("anna", used))
	assert.Equal(t, "Dirk_Jan__bingo_card.png", FileName("Dirk/Jan", used))
	assert.Equal(t, "card__bingo_card.png", FileName("..", used))
}

func TestRenderAll(t *testing.T) {
	set := sampleSet(t)
	dir := t.TempDir()

	paths, err := newRenderer(t).RenderAll(context.Background(), set, dir, 3)
	require.NoError(t, err)
	require.Len(t, paths, set.Len())
	assert.Equal(t, filepath.Join(dir, "Dirk_Jan__bingo_card.png"), paths[3])

	for _, p := range paths {
		f, err := os.Open(p)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, ImageSize, cfg.Width)
		assert.Equal(t, ImageSize, cfg.Height)
	}
}

func TestRenderAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRenderer(t).RenderAll(ctx, sampleSet(t), t.TempDir(), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func measure(face font.Face, s string) fixed.Int26_6 {
	return font.MeasureString(face, s)
}
