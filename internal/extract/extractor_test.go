package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kura/internal/extract/extracttest"
)

func TestExtractPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	extracttest.WritePDF(t, path, "Hello world\nSecond line", "", "Page (three)")

	docs, err := NewExtractor().ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(docs))
	}
	for i, d := range docs {
		if d.Page != i {
			t.Errorf("doc %d page = %d", i, d.Page)
		}
		if d.Source != path {
			t.Errorf("doc %d source = %q", i, d.Source)
		}
	}
	if docs[0].Content != "Hello world\nSecond line" {
		t.Errorf("page 0 = %q", docs[0].Content)
	}
	if docs[1].Content != "" {
		t.Errorf("empty page = %q", docs[1].Content)
	}
	if docs[2].Content != "Page (three)" {
		t.Errorf("page 2 = %q", docs[2].Content)
	}
}

func TestExtractPages_malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExtractor().ExtractPages(path); err == nil {
		t.Error("expected error for malformed PDF")
	}
	if _, err := NewExtractor().ExtractPages(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	extracttest.WritePDF(t, filepath.Join(dir, "b.pdf"), "bee")
	extracttest.WritePDF(t, filepath.Join(dir, "a.PDF"), "ay one", "ay two")
	extracttest.WritePDF(t, filepath.Join(dir, "sub", "c.pdf"), "sea")
	extracttest.WritePDF(t, filepath.Join(dir, ".hidden", "h.pdf"), "hidden dir")
	extracttest.WritePDF(t, filepath.Join(dir, ".h.pdf"), "hidden file")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	docs, err := NewExtractor().LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	want := []struct {
		source  string
		page    int
		content string
	}{
		{filepath.Join(dir, "a.PDF"), 0, "ay one"},
		{filepath.Join(dir, "a.PDF"), 1, "ay two"},
		{filepath.Join(dir, "b.pdf"), 0, "bee"},
		{filepath.Join(dir, "sub", "c.pdf"), 0, "sea"},
	}
	if len(docs) != len(want) {
		t.Fatalf("got %d docs: %+v", len(docs), docs)
	}
	for i, w := range want {
		if docs[i].Source != w.source || docs[i].Page != w.page || docs[i].Content != w.content {
			t.Errorf("doc %d = %+v, want %+v", i, docs[i], w)
		}
	}
}

func TestLoadDirectory_errors(t *testing.T) {
	e := NewExtractor()
	ctx := context.Background()
	if _, err := e.LoadDirectory(ctx, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file.pdf")
	extracttest.WritePDF(t, file, "x")
	if _, err := e.LoadDirectory(ctx, file); err == nil {
		t.Error("expected error when path is a file")
	}

	dir := t.TempDir()
	extracttest.WritePDF(t, filepath.Join(dir, "good.pdf"), "fine")
	if err := os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("%PDF-1.4\ngarbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadDirectory(ctx, dir); err == nil {
		t.Error("expected a malformed PDF to fail the load")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.LoadDirectory(cancelled, filepath.Join(dir)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadDirectory_empty(t *testing.T) {
	docs, err := NewExtractor().LoadDirectory(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no docs, got %d", len(docs))
	}
}

func TestIsPDF(t *testing.T) {
	for path, want := range map[string]bool{"a.pdf": true, "A.Pdf": true, "a.pdf.txt": false, "pdf": false} {
		if got := IsPDF(path); got != want {
			t.Errorf("IsPDF(%q) = %v", path, got)
		}
	}
}

func TestToValidUTF8(t *testing.T) {
	if got := toValidUTF8("hello\x80world"); got != "hello�world" {
		t.Errorf("got %q", got)
	}
	if got := toValidUTF8("café"); got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestLoadDirectory_followsFileSymlinks(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "real.pdf")
	extracttest.WritePDF(t, outside, "linked page")

	dir := t.TempDir()
	link := filepath.Join(dir, "linked.pdf")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	sub := t.TempDir()
	extracttest.WritePDF(t, filepath.Join(sub, "inner.pdf"), "behind a dir link")
	if err := os.Symlink(sub, filepath.Join(dir, "linkdir.pdf")); err != nil {
		t.Fatal(err)
	}

	docs, err := NewExtractor().LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs: %+v", len(docs), docs)
	}
	if docs[0].Source != link || docs[0].Content != "linked page" {
		t.Errorf("doc = %+v", docs[0])
	}

	if err := os.Symlink(filepath.Join(dir, "gone.pdf"), filepath.Join(dir, "dangling.pdf")); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExtractor().LoadDirectory(context.Background(), dir); err == nil {
		t.Error("expected a dangling link to fail the load")
	}
}
