package extraction

import (
	"log/slog"
	"os/exec"

	"github.com/carelink/backend/internal/ocr"
)

// Capabilities records which extraction backends were found at startup.
// Probing happens once; call sites branch on the recorded result instead
// of re-probing, and a missing backend degrades to the placeholder path.
type Capabilities struct {
	// Tesseract is the resolved OCR binary path, empty when absent.
	Tesseract string
	// Rasterizer is the PDF-to-image converter found on PATH:
	// "pdftoppm" (Poppler), "magick" (ImageMagick), or empty.
	Rasterizer string
}

// Probe detects available backends. Native PDF, DOCX and plain-text
// parsing are compiled in and need no probing.
func Probe(logger *slog.Logger) Capabilities {
	caps := Capabilities{}

	if path, ok := ocr.Probe(); ok {
		caps.Tesseract = path
	}
	for _, candidate := range []string{"pdftoppm", "magick"} {
		if path, err := exec.LookPath(candidate); err == nil && path != "" {
			caps.Rasterizer = candidate
			break
		}
	}

	logger.Info("extraction capabilities probed",
		"tesseract", caps.Tesseract != "",
		"rasterizer", caps.Rasterizer)
	return caps
}

// CanOCR reports whether the scanned-document path is usable at all.
func (c Capabilities) CanOCR() bool { return c.Tesseract != "" }

// CanRasterizePDF reports whether scanned PDFs can be converted to
// images for the OCR path.
func (c Capabilities) CanRasterizePDF() bool {
	return c.Rasterizer != "" && c.CanOCR()
}
