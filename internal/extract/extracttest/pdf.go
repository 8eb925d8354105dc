// Package extracttest writes small PDF files for tests.
package extracttest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	marginPt   = 72.0
	lineHeight = 14.0
)

// fixedDate keeps generated files byte-identical between runs.
var fixedDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// BuildPDF returns a letter-size PDF with one page per argument. Each line of a
// page's text becomes a line of Helvetica text. Characters outside cp1252 are
// replaced.
func BuildPDF(pages ...string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.SetCreationDate(fixedDate)
	doc.SetModificationDate(fixedDate)
	doc.SetFont("Helvetica", "", 12)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, text := range pages {
		doc.AddPage()
		if text == "" {
			continue
		}
		for i, line := range strings.Split(text, "\n") {
			if line == "" {
				continue
			}
			doc.Text(marginPt, marginPt+lineHeight*float64(i), tr(line))
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePDF writes BuildPDF(pages...) to path, creating parent directories.
func WritePDF(t testing.TB, path string, pages ...string) {
	t.Helper()
	data, err := BuildPDF(pages...)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}
