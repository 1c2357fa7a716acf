package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
)

// rasterizePDF converts PDF pages to PNG images in a fresh temp
// directory and returns the page image paths in page order, plus a
// cleanup function that must run on every exit path.
//
// Poppler's pdftoppm is preferred; ImageMagick is the fallback. Both are
// invoked as CLIs, matching how the OCR engine itself is integrated.
func rasterizePDF(ctx context.Context, rasterizer, pdfPath string, dpi int) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "carelink-raster-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("create raster temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	var cmd *exec.Cmd
	switch rasterizer {
	case "pdftoppm":
		prefix := filepath.Join(tmpDir, "page")
		cmd = exec.CommandContext(ctx, "pdftoppm", "-png", "-r", strconv.Itoa(dpi), pdfPath, prefix)
	case "magick":
		out := filepath.Join(tmpDir, "page-%03d.png")
		cmd = exec.CommandContext(ctx, "magick", "-density", strconv.Itoa(dpi), pdfPath, out)
	default:
		cleanup()
		return nil, func() {}, fmt.Errorf("no PDF rasterizer available")
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("rasterize with %s: %w (%s)", rasterizer, err, string(out))
	}

	pages, err := filepath.Glob(filepath.Join(tmpDir, "*.png"))
	if err != nil || len(pages) == 0 {
		cleanup()
		return nil, func() {}, fmt.Errorf("rasterizer produced no pages")
	}
	sort.Strings(pages)

	return pages, cleanup, nil
}
