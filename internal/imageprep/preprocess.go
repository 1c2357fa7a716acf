// Package imageprep normalizes scanned pages before OCR to raise
// recognition accuracy.
package imageprep

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Options parameterize the preprocessing pipeline. Zero values take the
// defaults below.
type Options struct {
	// TargetLongEdge is the resolution the longer image edge is scaled to
	// when the source is smaller. OCR accuracy degrades sharply below
	// roughly 2000px for full pages.
	TargetLongEdge int
	// ContrastPct is passed to contrast adjustment (percent, -100..100).
	ContrastPct float64
	// BrightnessPct normalizes brightness (percent, -100..100).
	BrightnessPct float64
	// BlurSigma applies optional noise-reduction blur; 0 disables it.
	BlurSigma float64
	// Threshold binarizes the greyscale image; 0 disables binarization.
	Threshold uint8
}

// DefaultOptions are tuned for printed medical reports scanned at
// ordinary phone-camera quality.
var DefaultOptions = Options{
	TargetLongEdge: 2000,
	ContrastPct:    25,
	BrightnessPct:  5,
	BlurSigma:      0.4,
	Threshold:      150,
}

// sharpenKernel is a 3x3 edge-emphasis convolution.
var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Preprocessor prepares images for OCR.
type Preprocessor struct {
	opts   Options
	logger *slog.Logger
}

// New creates a preprocessor. Zero fields in opts fall back to defaults.
func New(opts Options, logger *slog.Logger) *Preprocessor {
	if opts.TargetLongEdge <= 0 {
		opts.TargetLongEdge = DefaultOptions.TargetLongEdge
	}
	return &Preprocessor{
		opts:   opts,
		logger: logger.With("component", "imageprep"),
	}
}

// Preprocess writes an OCR-optimized copy of the image at path and
// returns the new path. On any failure it logs and returns the original
// path unchanged: preprocessing never blocks the pipeline.
func (p *Preprocessor) Preprocess(path string) string {
	img, err := imaging.Open(path)
	if err != nil {
		p.logger.Warn("cannot open image, skipping preprocessing", "path", path, "error", err)
		return path
	}

	img = p.apply(img)

	out := processedPath(path)
	if err := imaging.Save(img, out); err != nil {
		p.logger.Warn("cannot save processed image, using original", "path", path, "error", err)
		return path
	}
	return out
}

// apply runs the pipeline stages in order. Stage order matters: resize
// before sharpening, binarize last.
func (p *Preprocessor) apply(img image.Image) image.Image {
	img = p.resize(img)
	img = imaging.Grayscale(img)
	if p.opts.BrightnessPct != 0 {
		img = imaging.AdjustBrightness(img, p.opts.BrightnessPct)
	}
	if p.opts.ContrastPct != 0 {
		img = imaging.AdjustContrast(img, p.opts.ContrastPct)
	}
	img = imaging.Convolve3x3(img, sharpenKernel, nil)
	if p.opts.BlurSigma > 0 {
		img = imaging.Blur(img, p.opts.BlurSigma)
	}
	if p.opts.Threshold > 0 {
		img = binarize(img, p.opts.Threshold)
	}
	return img
}

// resize scales the image up to the target long edge, preserving aspect
// ratio. Images already large enough are left alone.
func (p *Preprocessor) resize(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	long := w
	if h > w {
		long = h
	}
	if long >= p.opts.TargetLongEdge {
		return img
	}

	if w >= h {
		return imaging.Resize(img, p.opts.TargetLongEdge, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, p.opts.TargetLongEdge, imaging.Lanczos)
}

// binarize maps every pixel to pure black or white around the threshold.
func binarize(img image.Image, threshold uint8) image.Image {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		// Luma approximation; the image is already greyscale here.
		y := (uint32(c.R)*299 + uint32(c.G)*587 + uint32(c.B)*114) / 1000
		if y >= uint32(threshold) {
			return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
		}
		return color.NRGBA{A: c.A}
	})
}

// processedPath derives the output filename next to the source file.
func processedPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf("%s.ocr.png", base[:len(base)-len(ext)]))
}

// Cleanup removes a processed file if it differs from the original.
// Safe to call on every exit path.
func Cleanup(original, processed string) {
	if processed != original && processed != "" {
		_ = os.Remove(processed)
	}
}
