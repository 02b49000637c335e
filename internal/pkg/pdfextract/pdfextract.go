package pdfextract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts plain text from a PDF held in b.
// Returns empty string and nil error if the PDF has no extractable text.
func ExtractText(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractPreview returns up to maxRunes of extracted text, whitespace
// collapsed, for display next to an uploaded document.
func ExtractPreview(b []byte, maxRunes int) (string, error) {
	text, err := ExtractText(b)
	if err != nil {
		return "", err
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if maxRunes > 0 && len(runes) > maxRunes {
		return string(runes[:maxRunes]), nil
	}
	return text, nil
}
