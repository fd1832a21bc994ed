package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize bounds a single uploaded document.
const MaxFileSize = 5 << 20 // 5 MiB

var (
	// ErrFileTooLarge marks an upload above MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds the 5 MiB size limit")
	// ErrEmptyFile marks a zero-length upload.
	ErrEmptyFile = errors.New("file is empty")
	// ErrUnsupportedFormat marks an upload whose MIME type and extension
	// are both unknown to the registry.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyExtraction marks a document that decoded to no text.
	ErrEmptyExtraction = errors.New("no text could be extracted from the document")
)

// Extractor converts one raw document buffer into plain text.
type Extractor interface {
	Name() string
	MIMETypes() []string
	Extensions() []string
	ExtractText(data []byte) (string, error)
}

// Registry keeps a mapping from MIME types and file extensions to
// extractor strategies.
type Registry struct {
	byMIME map[string]Extractor
	byExt  map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: map[string]Extractor{},
		byExt:  map[string]Extractor{},
	}
}

// Register adds or replaces an extractor strategy.
func (r *Registry) Register(e Extractor) {
	if r.byMIME == nil {
		r.byMIME = map[string]Extractor{}
	}
	if r.byExt == nil {
		r.byExt = map[string]Extractor{}
	}
	for _, mt := range e.MIMETypes() {
		r.byMIME[strings.ToLower(mt)] = e
	}
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Resolve picks an extractor by declared MIME type first, then by the
// filename extension.
func (r *Registry) Resolve(declaredMIME, filename string) (Extractor, error) {
	mt := strings.ToLower(strings.TrimSpace(declaredMIME))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if e, ok := r.byMIME[mt]; ok {
		return e, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if e, ok := r.byExt[ext]; ok {
		return e, nil
	}

	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filename, declaredMIME)
}
