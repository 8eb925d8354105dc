// Package extract loads PDF documents as one text document per page.
package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kura/internal/models"
)

// Extractor reads PDF files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages reads the PDF at path and returns one Document per page, in page order.
// Pages without text yield Documents with empty Content.
func (e *Extractor) ExtractPages(path string) ([]models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	texts, err := extractPDFPages(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	docs := make([]models.Document, len(texts))
	for i, text := range texts {
		docs[i] = models.Document{
			Source:  path,
			Page:    i,
			Content: strings.TrimSpace(toValidUTF8(text)),
		}
	}
	return docs, nil
}

// LoadDirectory walks dir in lexical order and extracts every PDF it finds.
// Hidden files and directories are skipped. Symlinks to PDF files are followed; symlinked
// directories are not. Any unreadable PDF, including a dangling link, fails the whole load.
func (e *Extractor) LoadDirectory(ctx context.Context, dir string) ([]models.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory: %s is not a directory", dir)
	}

	var docs []models.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPDF(path) {
			return nil
		}
		ok, err := isRegularFile(path, d)
		if err != nil || !ok {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		pages, err := e.ExtractPages(path)
		if err != nil {
			return err
		}
		docs = append(docs, pages...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// IsPDF reports whether path has a .pdf extension, in any case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// isRegularFile reports whether d is a regular file or a symlink resolving to one.
func isRegularFile(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
