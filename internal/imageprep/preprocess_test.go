package imageprep

import (
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			shade := uint8((x + y) % 256)
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	path := filepath.Join(dir, "page.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestPreprocess_ProducesNewFile(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, 120, 80)

	p := New(Options{TargetLongEdge: 200, ContrastPct: 20, Threshold: 128}, slog.Default())
	out := p.Preprocess(src)

	assert.NotEqual(t, src, out)
	_, err := os.Stat(out)
	assert.NoError(t, err)

	Cleanup(src, out)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestPreprocess_MissingFileReturnsOriginal(t *testing.T) {
	p := New(Options{}, slog.Default())
	path := "/nonexistent/scan.png"
	assert.Equal(t, path, p.Preprocess(path))
}

func TestResize_PreservesAspectRatio(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, 100, 50)

	p := New(Options{TargetLongEdge: 400}, slog.Default())
	out := p.Preprocess(src)
	defer Cleanup(src, out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestResize_LargeImagesLeftAlone(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, 300, 200)

	p := New(Options{TargetLongEdge: 100}, slog.Default())
	out := p.Preprocess(src)
	defer Cleanup(src, out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Width)
}

func TestCleanup_NeverRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, 10, 10)

	Cleanup(src, src)
	_, err := os.Stat(src)
	assert.NoError(t, err)
}
