package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	t.Parallel()

	service := DefaultService(nil)
	data := []byte("We request $50,000 for materials.\r\nSecond line.\r\n\r\n\r\n\r\nAfter blanks.\n")

	doc, err := service.Extract(data, "proposal-1", "budget.txt", "text/plain")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	want := "We request $50,000 for materials.\nSecond line.\n\nAfter blanks."
	if doc.Text != want {
		t.Fatalf("unexpected text: %q", doc.Text)
	}
	if doc.WordCount != 9 {
		t.Fatalf("expected 9 words, got %d", doc.WordCount)
	}
	if doc.Identifier != "proposal-1" || doc.Filename != "budget.txt" {
		t.Fatalf("unexpected metadata: %+v", doc)
	}
}

func TestExtractRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	service := DefaultService(nil)
	if _, err := service.Extract(nil, "proposal-1", "a.txt", "text/plain"); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestExtractRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	service := DefaultService(nil)
	data := make([]byte, MaxFileSize+1)

	if _, err := service.Extract(data, "proposal-1", "big.txt", "text/plain"); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestExtractRejectsUnsupportedFormat(t *testing.T) {
	t.Parallel()

	service := DefaultService(nil)
	if _, err := service.Extract([]byte{0xff, 0xd8}, "proposal-1", "photo.jpg", "image/jpeg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractRejectsEmptyExtraction(t *testing.T) {
	t.Parallel()

	service := DefaultService(nil)
	if _, err := service.Extract([]byte("   \n\n\t  "), "proposal-1", "blank.txt", "text/plain"); !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
}

func TestRegistryPrefersDeclaredMIME(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&TextExtractor{})
	registry.Register(&HTMLExtractor{})

	// Declared MIME type wins over a conflicting extension.
	extractor, err := registry.Resolve("text/html; charset=utf-8", "page.txt")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if extractor.Name() != "html" {
		t.Fatalf("expected html extractor, got %s", extractor.Name())
	}

	extractor, err = registry.Resolve("application/octet-stream", "notes.txt")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if extractor.Name() != "txt" {
		t.Fatalf("expected txt extractor by extension, got %s", extractor.Name())
	}
}

func TestHTMLExtraction(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>p{color:red}</style><script>alert(1)</script></head>
	<body><h1>Community Garden</h1><p>We request funding.</p><p></p></body></html>`

	service := DefaultService(nil)
	doc, err := service.Extract([]byte(html), "proposal-1", "garden.html", "text/html")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if !strings.Contains(doc.Text, "Community Garden") || !strings.Contains(doc.Text, "We request funding.") {
		t.Fatalf("unexpected text: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "alert") || strings.Contains(doc.Text, "color:red") {
		t.Fatalf("markup leaked into text: %q", doc.Text)
	}
}

func TestDocxExtraction(t *testing.T) {
	t.Parallel()

	data := buildDocx(t, "Project summary.", "Budget: $10,000.")

	service := DefaultService(nil)
	doc, err := service.Extract(data, "proposal-1", "plan.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	want := "Project summary.\nBudget: $10,000."
	if doc.Text != want {
		t.Fatalf("unexpected text: %q", doc.Text)
	}
}

func TestDocxExtractionRejectsBrokenContainer(t *testing.T) {
	t.Parallel()

	service := DefaultService(nil)
	_, err := service.Extract([]byte("not a zip at all"), "proposal-1", "plan.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err == nil {
		t.Fatal("expected error for broken docx container")
	}
}

// buildDocx assembles a minimal OOXML container with one paragraph per
// argument.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}

	document := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	part, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}
	if _, err := part.Write([]byte(document)); err != nil {
		t.Fatalf("write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	return buf.Bytes()
}
