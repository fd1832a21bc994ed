package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"ProposalReviewer/internal/domain"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Service enforces size and format gates around extractor strategies and
// post-processes the extracted text into its normalized form.
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// NewService wires a registry; DefaultService registers the built-ins.
func NewService(registry *Registry, logger *slog.Logger) *Service {
	return &Service{registry: registry, logger: logger}
}

// DefaultService returns a service with PDF, DOCX, TXT and HTML support.
func DefaultService(logger *slog.Logger) *Service {
	registry := NewRegistry()
	registry.Register(&PDFExtractor{})
	registry.Register(&DocxExtractor{})
	registry.Register(&TextExtractor{})
	registry.Register(&HTMLExtractor{})
	return NewService(registry, logger)
}

// Extract converts one uploaded buffer into a ParsedDocument.
func (s *Service) Extract(data []byte, identifier, filename, declaredMIME string) (domain.ParsedDocument, error) {
	if len(data) == 0 {
		return domain.ParsedDocument{}, fmt.Errorf("%s: %w", filename, ErrEmptyFile)
	}
	if len(data) > MaxFileSize {
		return domain.ParsedDocument{}, fmt.Errorf("%s: %w", filename, ErrFileTooLarge)
	}

	extractor, err := s.registry.Resolve(declaredMIME, filename)
	if err != nil {
		return domain.ParsedDocument{}, err
	}

	raw, err := extractor.ExtractText(data)
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("extract %s via %s: %w", filename, extractor.Name(), err)
	}

	text := CleanText(raw)
	if text == "" {
		return domain.ParsedDocument{}, fmt.Errorf("%s: %w", filename, ErrEmptyExtraction)
	}

	doc := domain.ParsedDocument{
		Identifier: identifier,
		Filename:   filename,
		MIMEType:   declaredMIME,
		Text:       text,
		WordCount:  len(strings.Fields(text)),
	}
	s.debug("document extracted", "id", identifier, "file", filename, "format", extractor.Name(), "words", doc.WordCount)
	return doc, nil
}

// CleanText normalizes line endings to LF, collapses runs of three or
// more newlines down to two, and trims outer whitespace.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func (s *Service) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
