package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bingocards/internal/cardgen"
	"github.com/lox/bingocards/internal/catalog"
)

var fixedTime = time.Date(2024, 12, 20, 18, 30, 0, 0, time.UTC)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	img.Set(w/2, h/2, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "a.PNG"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	paths, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.png")}, paths)
}

func TestFit(t *testing.T) {
	const pageW, pageH = 595.28, 841.89

	x, y, w, h := Fit(800, 800, pageW, pageH)
	assert.InDelta(t, pageW, w, 1e-9)
	assert.InDelta(t, pageW, h, 1e-9)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, (pageH-pageW)/2, y, 1e-9)

	x, y, w, h = Fit(100, 2000, pageW, pageH)
	assert.InDelta(t, pageH, h, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.InDelta(t, w/h, 100.0/2000.0, 1e-9)
	assert.InDelta(t, (pageW-w)/2, x, 1e-9)
}

func TestWritePDF(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Anna__bingo_card.png"), 80, 80)
	writePNG(t, filepath.Join(dir, "Bram__bingo_card.png"), 80, 40)

	out := filepath.Join(t.TempDir(), "bingo_cards.pdf")
	require.NoError(t, WritePDF(dir, out, fixedTime))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/Count 2")
}

func TestWritePDFNoImages(t *testing.T) {
	err := WritePDF(t.TempDir(), filepath.Join(t.TempDir(), "x.pdf"), fixedTime)
	assert.ErrorContains(t, err, "no images")
}

func TestWriteZip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("bbb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("aaaa"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.png"), []byte("c"), 0o644))

	out := filepath.Join(t.TempDir(), "cards.zip")
	require.NoError(t, WriteZip(dir, out, fixedTime))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.True(t, f.Modified.Equal(fixedTime), "%s modified %v", f.Name, f.Modified)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	assert.Equal(t, []string{"a.png", "b.png", "nested/c.png"}, names)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(body))

	// Same input, same bytes.
	again := filepath.Join(t.TempDir(), "again.zip")
	require.NoError(t, WriteZip(dir, again, fixedTime))
	first, _ := os.ReadFile(out)
	second, _ := os.ReadFile(again)
	assert.Equal(t, first, second)
}

func TestWriteZipMissingDir(t *testing.T) {
	err := WriteZip(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "x.zip"), fixedTime)
	assert.Error(t, err)
}

func TestManifestRoundTrip(t *testing.T) {
	var rows []catalog.Row
	for _, o := range []string{"Anna", "Bram", "Cees", "Dirk"} {
		for i := 0; i < 3; i++ {
			rows = append(rows, catalog.Row{Owner: o, Text: fmt.Sprintf("%s says %d", o, i), Question: fmt.Sprintf("%s%d", o, i)})
		}
	}
	c, err := catalog.Build(rows)
	require.NoError(t, err)
	set, err := cardgen.New(c, cardgen.Options{Seed: 11, MaxAttempts: -1}, log.NewWithOptions(io.Discard, log.Options{})).
		GenerateAll(context.Background(), c.Participants())
	require.NoError(t, err)

	images := []string{"/out/Anna__bingo_card.png", "/out/Bram__bingo_card.png"}
	m, err := NewManifest(set, 11, "bingo.xlsx", fixedTime, images)
	require.NoError(t, err)
	require.Len(t, m.Cards, 4)
	assert.Equal(t, "Anna__bingo_card.png", m.Cards[0].Image)
	assert.Empty(t, m.Cards[3].Image)
	assert.NotEmpty(t, m.RunID)

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, int64(11), got.Seed)
	assert.True(t, got.GeneratedAt.Equal(fixedTime))
	for i, mc := range got.Cards {
		assert.Equal(t, m.Cards[i].Participant, mc.Participant)
		assert.Equal(t, m.Cards[i].Items, mc.Items)
		assert.NoError(t, cardgen.Card(mc.Items).Validate(mc.Participant))
	}
}
