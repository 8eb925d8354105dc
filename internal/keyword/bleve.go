package keyword

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/hyperjump/kura/internal/models"
)

// BleveIndex implements TextIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// document is the shape stored in Bleve for each entry.
type document struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Page    float64 `json:"page"`
}

// NewBleveIndex creates or opens a Bleve index at path.
// If you change the index mapping in code, reset the store to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("source", bleve.NewKeywordFieldMapping())
	docMapping.AddFieldMappingsAt("page", bleve.NewNumericFieldMapping())
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat Bleve index: %w", err)
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexBatch indexes entries in a single Bleve batch. Re-indexing an ID replaces it.
func (b *BleveIndex) IndexBatch(ctx context.Context, entries []*models.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(e.ID, toDocument(e)); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", e.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to write Bleve batch: %w", err)
	}
	return nil
}

func toDocument(e *models.IndexEntry) document {
	doc := document{Content: e.Content}
	if s, ok := e.Metadata[models.MetaKeySource].(string); ok {
		doc.Source = s
	}
	switch p := e.Metadata[models.MetaKeyPage].(type) {
	case int:
		doc.Page = float64(p)
	case float64:
		doc.Page = p
	}
	return doc
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
