// Package extraction converts uploaded medical documents into text
// through a cascade of strategies: native parsers first, OCR second,
// and an explanatory placeholder when everything else comes up short.
//
// The cascade never returns empty text and never lets a parser failure
// escape for a supported type; only an unreadable upload is a hard error.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/carelink/backend/internal/imageprep"
	"github.com/carelink/backend/internal/ocr"
)

// Config holds the extraction tunables.
type Config struct {
	// MinPDFTextChars is the minimum native text-layer length before the
	// PDF escalates to the OCR path.
	MinPDFTextChars int
	// MinOCRChars is the minimum OCR output length considered a signal.
	MinOCRChars int
	// RasterDPI is the PDF rasterization resolution for the OCR path.
	RasterDPI int
	// OCRCorrections enables the best-effort medical text corrections.
	OCRCorrections bool
}

// Result is the outcome of running the cascade over one file.
type Result struct {
	// Text is never empty: genuine extracted text or placeholder.
	Text string
	// Method names the strategy that produced the text.
	Method string
	// Pages is the page count for paged formats, 1 otherwise.
	Pages int
	// Placeholder is true when Text explains an inconclusive extraction
	// instead of carrying document content. Placeholder text must never
	// be indexed for retrieval.
	Placeholder bool
}

// pageBreak separates per-page OCR output in multi-page documents.
const pageBreak = "\n\n----- page %d -----\n\n"

// pageErrorMarker replaces a single failed page without aborting the
// document.
const pageErrorMarker = "[error processing this page]"

// Service runs the extraction cascade.
type Service struct {
	caps   Capabilities
	engine *ocr.Engine
	prep   *imageprep.Preprocessor
	cfg    Config
	logger *slog.Logger
}

// NewService wires the cascade. engine may be nil when tesseract is
// absent; the OCR strategies then resolve to placeholders.
func NewService(caps Capabilities, engine *ocr.Engine, prep *imageprep.Preprocessor, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		caps:   caps,
		engine: engine,
		prep:   prep,
		cfg:    cfg,
		logger: logger.With("component", "extraction"),
	}
}

// strategy is one extraction attempt. Strategies for a file run in order
// until one yields sufficient signal.
type strategy struct {
	name string
	run  func(ctx context.Context, data []byte, path string) (text string, pages int, err error)
}

// Extract runs the cascade for the file at path. mimeType is the
// declared type; the extension breaks ties when the declaration is
// generic. Returns a hard error only when the file cannot be read.
func (s *Service) Extract(ctx context.Context, path, filename, mimeType string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{
			Code:    ErrReadFailed,
			Message: "cannot read uploaded file",
			File:    filename,
			Cause:   err,
		}
	}

	family := detectFamily(filename, mimeType)
	strategies := s.strategiesFor(family, path)
	if len(strategies) == 0 {
		return nil, &Error{
			Code:    ErrUnsupportedType,
			Message: fmt.Sprintf("unsupported file type %q", mimeType),
			File:    filename,
		}
	}

	var lastReason string
	for _, strat := range strategies {
		text, pages, err := strat.run(ctx, data, path)
		if err != nil {
			s.logger.Info("extraction strategy failed",
				"strategy", strat.name, "file", filename, "error", err)
			lastReason = err.Error()
			continue
		}

		text = s.postProcess(text)
		if !s.sufficient(text) {
			s.logger.Debug("extraction strategy below signal threshold",
				"strategy", strat.name, "file", filename, "chars", len(text))
			lastReason = "extracted text was too short to be meaningful"
			continue
		}

		if pages < 1 {
			pages = 1
		}
		return &Result{Text: text, Method: strat.name, Pages: pages}, nil
	}

	if lastReason == "" {
		lastReason = "no extraction strategy applies to this file"
	}
	return &Result{
		Text:        placeholderText(filename, lastReason),
		Method:      "placeholder",
		Pages:       1,
		Placeholder: true,
	}, nil
}

// strategiesFor builds the ordered strategy list for a file family.
func (s *Service) strategiesFor(family fileFamily, path string) []strategy {
	switch family {
	case familyText:
		return []strategy{{name: "plain-text", run: s.runPlainText}}

	case familyWord:
		return []strategy{{name: "docx", run: s.runDOCX}}

	case familyImage:
		return []strategy{{name: "image-ocr", run: s.runImageOCR}}

	case familyPDF:
		strategies := []strategy{{name: "pdf-text", run: s.runPDFText}}
		if s.caps.CanRasterizePDF() {
			strategies = append(strategies, strategy{name: "pdf-ocr", run: s.runPDFOCR})
		}
		return strategies

	default:
		return nil
	}
}

func (s *Service) runPlainText(_ context.Context, data []byte, _ string) (string, int, error) {
	return string(data), 1, nil
}

func (s *Service) runDOCX(_ context.Context, data []byte, _ string) (string, int, error) {
	text, err := extractDOCX(data)
	if err != nil {
		return "", 0, &Error{Code: ErrParserFailed, Message: "docx parsing failed", Cause: err}
	}
	return text, 1, nil
}

func (s *Service) runPDFText(_ context.Context, data []byte, _ string) (string, int, error) {
	analysis := analyzePDF(data, s.cfg.MinPDFTextChars)
	if analysis.Err != nil {
		return "", 0, &Error{Code: ErrParserFailed, Message: "pdf parsing failed", Cause: analysis.Err}
	}
	if analysis.IsScanned {
		return "", 0, fmt.Errorf("pdf appears to be scanned (%d pages, thin text layer)", analysis.PageCount)
	}
	return analysis.ExtractedText, analysis.PageCount, nil
}

// runPDFOCR rasterizes the PDF and OCRs each page independently. A bad
// page yields an inline error marker; only a wholly failed rasterization
// fails the strategy. Temp files are removed on every exit path.
func (s *Service) runPDFOCR(ctx context.Context, _ []byte, path string) (string, int, error) {
	if s.engine == nil {
		return "", 0, &Error{Code: ErrOCRUnavailable, Message: "ocr engine not available"}
	}

	pages, cleanup, err := rasterizePDF(ctx, s.caps.Rasterizer, path, s.cfg.RasterDPI)
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	var b strings.Builder
	goodPages := 0
	for i, pagePath := range pages {
		if i > 0 {
			fmt.Fprintf(&b, pageBreak, i+1)
		}

		text, err := s.ocrOnePage(ctx, pagePath)
		if err != nil {
			s.logger.Info("page-local ocr failure", "page", i+1, "error", err)
			b.WriteString(pageErrorMarker)
			continue
		}
		b.WriteString(text)
		goodPages++
	}

	if goodPages == 0 {
		return "", 0, fmt.Errorf("ocr failed on all %d pages", len(pages))
	}
	return b.String(), len(pages), nil
}

func (s *Service) runImageOCR(ctx context.Context, _ []byte, path string) (string, int, error) {
	if s.engine == nil {
		return "", 0, &Error{Code: ErrOCRUnavailable, Message: "ocr engine not available"}
	}
	text, err := s.ocrOnePage(ctx, path)
	if err != nil {
		return "", 0, err
	}
	return text, 1, nil
}

// ocrOnePage preprocesses one image and recognizes it, cleaning up the
// intermediate file regardless of outcome.
func (s *Service) ocrOnePage(ctx context.Context, path string) (string, error) {
	processed := s.prep.Preprocess(path)
	defer imageprep.Cleanup(path, processed)
	return s.engine.Recognize(ctx, processed)
}

// postProcess normalizes extracted text and optionally applies the
// medical OCR corrections.
func (s *Service) postProcess(text string) string {
	text = Normalize(text)
	if s.cfg.OCRCorrections {
		text = CorrectOCRErrors(text)
	}
	return text
}

// sufficient is the uniform "did this produce enough signal" predicate
// shared by all strategies.
func (s *Service) sufficient(text string) bool {
	return len(strings.TrimSpace(text)) >= s.cfg.MinOCRChars
}

// fileFamily groups MIME types by extraction path.
type fileFamily int

const (
	familyUnknown fileFamily = iota
	familyPDF
	familyWord
	familyText
	familyImage
)

// detectFamily dispatches on the declared MIME type, falling back to the
// file extension for generic declarations.
func detectFamily(filename, mimeType string) fileFamily {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case mt == "application/pdf":
		return familyPDF
	case mt == "application/msword",
		mt == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return familyWord
	case mt == "text/plain" || strings.HasPrefix(mt, "text/"):
		return familyText
	case strings.HasPrefix(mt, "image/"):
		return familyImage
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return familyPDF
	case ".doc", ".docx":
		return familyWord
	case ".txt":
		return familyText
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return familyImage
	}
	return familyUnknown
}
