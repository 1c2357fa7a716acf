package extraction

import "fmt"

// placeholderHeader opens every placeholder so downstream logic can
// reliably distinguish it from genuine document content.
const placeholderHeader = "[Automatic text extraction was inconclusive]"

// placeholderText builds the structured human-readable stand-in returned
// when no strategy produced sufficient text. It names the file, explains
// why extraction was inconclusive, and invites the user to describe the
// contents manually.
func placeholderText(filename, reason string) string {
	return fmt.Sprintf(
		"%s\nFile: %s\nReason: %s\n\n"+
			"I couldn't read the contents of this document automatically. "+
			"Please describe what it contains (for example, the test names and values "+
			"on a lab report) and I'll do my best to help.",
		placeholderHeader, filename, reason)
}

// IsPlaceholder reports whether text is an extraction placeholder rather
// than genuine document content. Placeholders are never indexed for
// retrieval.
func IsPlaceholder(text string) bool {
	return len(text) >= len(placeholderHeader) && text[:len(placeholderHeader)] == placeholderHeader
}
