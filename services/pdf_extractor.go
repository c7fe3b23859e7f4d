package services

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// PDFExtractor extracts text-layer content from PDF files
type PDFExtractor struct{}

// ExtractText returns the plain text of data. Malformed files make the parser
// panic, which is reported as an error.
func (PDFExtractor) ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return buf.String(), nil
}
