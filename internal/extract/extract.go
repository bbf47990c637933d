package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Kind is the declared type of an uploaded document.
type Kind int

const (
	PlainText Kind = iota
	PDF
)

func (k Kind) String() string {
	switch k {
	case PDF:
		return "pdf"
	default:
		return "text"
	}
}

// KindFromFilename infers the document kind from the filename suffix.
// The content is never inspected.
func KindFromFilename(name string) Kind {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return PDF
	}
	return PlainText
}

// Payload is an uploaded document as received at the boundary.
type Payload struct {
	Filename string
	Kind     Kind
	Data     []byte
}

// NewPayload builds a payload, deriving Kind from filename.
func NewPayload(filename string, data []byte) Payload {
	return Payload{
		Filename: filename,
		Kind:     KindFromFilename(filename),
		Data:     data,
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract converts the payload into plain text.
func Extract(p Payload) (string, error) {
	switch p.Kind {
	case PDF:
		return extractPDF(p.Data)
	default:
		return extractPlain(p.Data)
	}
}

// CheckContent reports ErrEmptyContent when text holds nothing but whitespace.
func CheckContent(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ExtractionError{Reason: ErrEmptyContent}
	}
	return nil
}

func extractPlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", &ExtractionError{
			Reason: ErrInvalidEncoding,
			Err:    errors.New("content is not valid UTF-8"),
		}
	}
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	r, err := openPDF(data)
	if err != nil {
		return "", &ExtractionError{Reason: ErrMalformedDocument, Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		text, err := pageText(r, i)
		if err != nil {
			return "", &ExtractionError{Reason: ErrMalformedDocument, Page: i, Err: err}
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// openPDF recovers from parser panics, which the pdf package raises on
// malformed input.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("parse document: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("parse page: %v", rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", errors.New("page object is missing")
	}
	return page.GetPlainText(nil)
}
