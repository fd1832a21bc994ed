package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// DocxExtractor reads the main document part of an OOXML word file and
// flattens its runs into plain text, one line per paragraph.
type DocxExtractor struct{}

var _ Extractor = (*DocxExtractor)(nil)

func (e *DocxExtractor) Name() string { return "docx" }

func (e *DocxExtractor) MIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (e *DocxExtractor) Extensions() []string {
	return []string{".docx"}
}

// ExtractText walks word/document.xml collecting text runs.
func (e *DocxExtractor) ExtractText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	var document *zip.File
	for _, f := range zr.File {
		if f.Name == docxDocumentPath {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("docx container has no %s", docxDocumentPath)
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxDocumentPath, err)
	}
	defer rc.Close()

	return flattenDocumentXML(rc)
}

func flattenDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		builder strings.Builder
		inText  bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				builder.WriteByte('\t')
			case "br":
				builder.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return builder.String(), nil
}
