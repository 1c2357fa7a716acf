package llm

import (
	"errors"
	"fmt"
	"strings"
)

// GenerationErrorCode represents specific generation failure types.
type GenerationErrorCode string

const (
	ErrModelUnavailable GenerationErrorCode = "MODEL_UNAVAILABLE"
	ErrModelRateLimited GenerationErrorCode = "MODEL_RATE_LIMITED"
	ErrModelTimeout     GenerationErrorCode = "MODEL_TIMEOUT"
	ErrEmptyResponse    GenerationErrorCode = "EMPTY_RESPONSE"
	ErrRetriesExhausted GenerationErrorCode = "RETRIES_EXHAUSTED"
)

// GenerationError is a structured error for model-call failures. Only
// throttling errors are retryable; everything else fails fast so the
// caller can fall back immediately.
type GenerationError struct {
	Code      GenerationErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// classifyError maps raw provider errors onto the taxonomy. Providers do
// not expose typed throttle errors through langchaingo, so this matches
// on the usual quota wording.
func classifyError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource exhausted"),
		strings.Contains(msg, "too many requests"):
		return &GenerationError{
			Code:      ErrModelRateLimited,
			Message:   "model throttled the request",
			Retryable: true,
			Cause:     err,
		}
	case strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "timeout"):
		return &GenerationError{
			Code:    ErrModelTimeout,
			Message: "model call timed out",
			Cause:   err,
		}
	default:
		return &GenerationError{
			Code:    ErrModelUnavailable,
			Message: "model call failed",
			Cause:   err,
		}
	}
}
