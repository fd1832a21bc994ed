package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
)

// Entry is one retained file from an uploaded archive.
type Entry struct {
	Filename string
	MIMEType string
	Data     []byte
}

// mimeByExt is the fixed table of document types accepted inside an
// archive. Anything else is assumed to be a non-proposal artifact (a
// README, an image) and skipped without error.
var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// IsArchive reports whether an upload should be expanded rather than
// extracted directly.
func IsArchive(filename, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "application/zip", "application/x-zip-compressed":
		return true
	}
	return strings.EqualFold(path.Ext(filename), ".zip")
}

// Expand enumerates a ZIP buffer and returns one entry per contained
// document of a supported type. Directory entries are skipped, path
// components are dropped, and nested archives are not recursed into.
func Expand(data []byte, logger *slog.Logger) ([]Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var entries []Entry
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		name := path.Base(file.Name)
		ext := strings.ToLower(path.Ext(name))
		mimeType, ok := mimeByExt[ext]
		if !ok {
			if logger != nil {
				logger.Debug("skipping archive entry", "entry", file.Name)
			}
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %s: %w", file.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive entry %s: %w", file.Name, err)
		}

		entries = append(entries, Entry{Filename: name, MIMEType: mimeType, Data: buf})
	}

	return entries, nil
}
