package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when a PDF or one of its pages cannot be parsed.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrInvalidEncoding is returned when plain text is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid encoding")
	// ErrEmptyContent is returned when extraction produced no readable text.
	ErrEmptyContent = errors.New("empty content")
)

// ExtractionError describes which extraction step failed and why.
// Reason is one of the sentinel errors above; Err is the underlying cause.
type ExtractionError struct {
	Reason error
	Page   int
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extract: " + e.Reason.Error()
	if e.Page > 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel stored in Reason.
func (e *ExtractionError) Is(target error) bool {
	return target == e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// UserMessage returns a message suitable for showing to the uploader.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMalformedDocument):
		return "Failed to extract text from PDF. Is it a valid PDF?"
	case errors.Is(err, ErrInvalidEncoding):
		return "Error reading text file: content is not valid UTF-8."
	case errors.Is(err, ErrEmptyContent):
		return "The uploaded file is empty or contains no readable text."
	default:
		return ""
	}
}
