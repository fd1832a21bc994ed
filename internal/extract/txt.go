package extract

import (
	"fmt"
	"unicode/utf8"
)

// TextExtractor accepts plain-text uploads as-is.
type TextExtractor struct{}

var _ Extractor = (*TextExtractor)(nil)

func (e *TextExtractor) Name() string { return "txt" }

func (e *TextExtractor) MIMETypes() []string {
	return []string{"text/plain"}
}

func (e *TextExtractor) Extensions() []string {
	return []string{".txt"}
}

// ExtractText decodes the buffer as UTF-8.
func (e *TextExtractor) ExtractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}
	return string(data), nil
}
