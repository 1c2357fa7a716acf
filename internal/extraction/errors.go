package extraction

import "fmt"

// ErrorCode represents specific extraction error types.
type ErrorCode string

const (
	ErrUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
	ErrFileTooLarge    ErrorCode = "FILE_TOO_LARGE"
	ErrReadFailed      ErrorCode = "READ_FAILED"
	ErrOCRUnavailable  ErrorCode = "OCR_UNAVAILABLE"
	ErrParserFailed    ErrorCode = "PARSER_FAILED"
)

// Error is a structured error for extraction failures. Only ErrReadFailed
// surfaces to callers as a hard failure; every other code resolves to
// placeholder text inside the cascade.
type Error struct {
	Code    ErrorCode
	Message string
	File    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
