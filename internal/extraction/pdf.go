package extraction

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// maxPDFTextBytes caps extracted text so a pathological PDF cannot
	// exhaust memory.
	maxPDFTextBytes = 512 * 1024
)

// PDFAnalysis is the result of the native text-layer pass over a PDF.
type PDFAnalysis struct {
	PageCount     int
	ExtractedText string
	IsScanned     bool
	Err           error
}

// analyzePDF extracts the text layer and decides whether the document is
// likely a scan. The pdf library panics on some malformed inputs, so the
// whole pass is wrapped in recover and never fails the request; on any
// error the analysis defaults to "scanned" and the cascade escalates to
// the OCR path.
func analyzePDF(data []byte, minSignalPerPage int) (result *PDFAnalysis) {
	result = &PDFAnalysis{
		PageCount: 1,
		IsScanned: true,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic during PDF analysis: %v", r)
			result.IsScanned = true
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		result.Err = fmt.Errorf("open PDF reader: %w", err)
		return result
	}

	result.PageCount = reader.NumPage()
	if result.PageCount < 1 {
		result.PageCount = 1
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		result.Err = fmt.Errorf("extract plain text: %w", err)
		return result
	}

	textBytes, err := io.ReadAll(io.LimitReader(plainText, maxPDFTextBytes))
	if err != nil {
		result.Err = fmt.Errorf("read plain text: %w", err)
		return result
	}

	result.ExtractedText = string(textBytes)
	result.IsScanned = isLikelyScanned(result.ExtractedText, result.PageCount, minSignalPerPage)
	return result
}

// isLikelyScanned returns true when the text layer is too thin to be a
// born-digital document (scans carry little or no extractable text).
func isLikelyScanned(text string, pages, minSignalPerPage int) bool {
	if pages <= 0 {
		pages = 1
	}
	charsPerPage := len(strings.TrimSpace(text)) / pages
	return charsPerPage < minSignalPerPage
}
