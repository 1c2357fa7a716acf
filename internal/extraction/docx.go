package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDOCX pulls paragraph and table text from a Word document. The
// parser is recover-guarded like the PDF pass: a corrupt or legacy .doc
// file yields an error the cascade turns into placeholder text.
func extractDOCX(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during DOCX parsing: %v", r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			line := strings.TrimSpace(block.String())
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		case *docx.Table:
			line := strings.TrimSpace(block.String())
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	return b.String(), nil
}
