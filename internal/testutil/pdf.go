// Package testutil provides fixtures for container tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// MinimalPDF assembles a single-page PDF from scratch. Cross-reference
// offsets are computed while writing, so the file is structurally valid and
// parseable without shipping a binary fixture.
func MinimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>",
	}

	offsets := make([]int, 0, len(objects))
	for i, body := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}

// WriteMinimalPDF writes the fixture into dir and returns its path
func WriteMinimalPDF(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, MinimalPDF(), 0o600); err != nil {
		t.Fatalf("writing pdf fixture: %v", err)
	}
	return path
}
