package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFExtractor pulls the full plain text out of a PDF document. The file
// is probed with pdfcpu first so corrupt uploads fail with a clear error
// before text extraction runs.
type PDFExtractor struct{}

var _ Extractor = (*PDFExtractor)(nil)

func (e *PDFExtractor) Name() string { return "pdf" }

func (e *PDFExtractor) MIMETypes() []string {
	return []string{"application/pdf"}
}

func (e *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}

// ExtractText validates the document structure and decodes its text.
func (e *PDFExtractor) ExtractText(data []byte) (string, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}
	if pages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return string(text), nil
}
