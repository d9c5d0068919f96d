// Package extract converts uploaded documents on disk to plain text.
// Supported formats: PDF (github.com/ledongthuc/pdf), DOCX
// (github.com/nguyenthenguyen/docx) and UTF-8 text. No OCR, layout,
// table or image handling is attempted.
package extract

import (
	"errors"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file names without a supported suffix.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrDecode is returned when a text file is not valid UTF-8.
	ErrDecode = errors.New("decode error")
)

// Func extracts the text of the file at path.
type Func func(path string) (string, error)

// Format names a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

// ForFile picks the extractor by case-sensitive file suffix.
func ForFile(name string) (Format, Func, error) {
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return FormatPDF, PDF, nil
	case strings.HasSuffix(name, ".docx"):
		return FormatDOCX, DOCX, nil
	case strings.HasSuffix(name, ".txt"):
		return FormatText, Text, nil
	default:
		return "", nil, ErrUnsupportedFormat
	}
}
