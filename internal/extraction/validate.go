package extraction

import "fmt"

// allowedMIMETypes is the upload allow-list: documents and the common
// scanned-image formats. Anything else is rejected before processing.
var allowedMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/webp": true,
}

// ValidateUpload checks the declared type and size against the allow-list
// and ceiling. Violations reject the upload immediately, before any
// processing starts.
func ValidateUpload(filename, mimeType string, size, maxBytes int64) error {
	if size > maxBytes {
		return &Error{
			Code:    ErrFileTooLarge,
			Message: fmt.Sprintf("file is %d bytes, limit is %d", size, maxBytes),
			File:    filename,
		}
	}
	if !allowedMIMETypes[mimeType] {
		// A recognizable extension rescues a generic declared type.
		if detectFamily(filename, mimeType) == familyUnknown {
			return &Error{
				Code:    ErrUnsupportedType,
				Message: fmt.Sprintf("file type %q is not supported", mimeType),
				File:    filename,
			}
		}
	}
	return nil
}
