package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildZip(t *testing.T, names ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte("content of " + name)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExpandFiltersUnsupportedEntries(t *testing.T) {
	t.Parallel()

	data := buildZip(t,
		"a.pdf",
		"b.docx",
		"nested/dir/c.pdf",
		"README.txt",
		"logo.jpg",
	)

	entries, err := Expand(data, nil)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	byName := map[string]Entry{}
	for _, entry := range entries {
		byName[entry.Filename] = entry
	}

	// Path components must be dropped.
	if _, ok := byName["c.pdf"]; !ok {
		t.Fatalf("expected basename c.pdf, got %v", byName)
	}
	if byName["a.pdf"].MIMEType != "application/pdf" {
		t.Fatalf("unexpected mime for a.pdf: %s", byName["a.pdf"].MIMEType)
	}
	if byName["b.docx"].MIMEType != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Fatalf("unexpected mime for b.docx: %s", byName["b.docx"].MIMEType)
	}
	if string(byName["a.pdf"].Data) != "content of a.pdf" {
		t.Fatalf("unexpected data: %q", byName["a.pdf"].Data)
	}
}

func TestExpandRejectsBrokenArchive(t *testing.T) {
	t.Parallel()

	if _, err := Expand([]byte("definitely not a zip"), nil); err == nil {
		t.Fatal("expected error for broken archive")
	}
}

func TestIsArchive(t *testing.T) {
	t.Parallel()

	cases := []struct {
		filename    string
		contentType string
		want        bool
	}{
		{"bundle.zip", "", true},
		{"bundle.ZIP", "", true},
		{"bundle.bin", "application/zip", true},
		{"bundle.bin", "application/x-zip-compressed; boundary=x", true},
		{"doc.pdf", "application/pdf", false},
		{"doc.txt", "text/plain", false},
	}

	for _, tc := range cases {
		if got := IsArchive(tc.filename, tc.contentType); got != tc.want {
			t.Fatalf("IsArchive(%q, %q) = %v, want %v", tc.filename, tc.contentType, got, tc.want)
		}
	}
}
