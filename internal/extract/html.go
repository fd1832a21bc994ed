package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor strips markup from HTML uploads, keeping the visible
// text with rough block boundaries preserved as newlines.
type HTMLExtractor struct{}

var _ Extractor = (*HTMLExtractor)(nil)

func (e *HTMLExtractor) Name() string { return "html" }

func (e *HTMLExtractor) MIMETypes() []string {
	return []string{"text/html"}
}

func (e *HTMLExtractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// ExtractText parses the document and collects block-level text.
func (e *HTMLExtractor) ExtractText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var builder strings.Builder
	blocks := doc.Find("p, h1, h2, h3, h4, h5, h6, li, td, pre, blockquote")
	if blocks.Length() == 0 {
		return doc.Text(), nil
	}

	blocks.Each(func(i int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		builder.WriteString(text)
		builder.WriteByte('\n')
	})

	return builder.String(), nil
}
