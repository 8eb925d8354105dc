// Package indexer turns a directory of PDFs into chunks with stable IDs and adds the new ones to a store.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kura/internal/models"
	"github.com/hyperjump/kura/internal/storage"
)

// DocumentLoader loads page documents from a directory.
type DocumentLoader interface {
	LoadDirectory(ctx context.Context, dir string) ([]models.Document, error)
}

// Result summarizes an ingestion run.
type Result struct {
	Documents int
	Chunks    int
	// Existing is the number of IDs the store held before the run.
	Existing int
	Added    int
	AddedIDs []string
}

// Indexer runs the load, split, identify and sync pipeline against a store.
type Indexer struct {
	store    storage.VectorStore
	splitter *Splitter
	loader   DocumentLoader
	logger   *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets the logger for progress output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(store storage.VectorStore, splitter *Splitter, loader DocumentLoader, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:    store,
		splitter: splitter,
		loader:   loader,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Run ingests every PDF under dataPath and adds chunks the store does not hold yet.
func (idx *Indexer) Run(ctx context.Context, dataPath string) (*Result, error) {
	docs, err := idx.loader.LoadDirectory(ctx, dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	idx.logger.Info("documents loaded", zap.String("path", dataPath), zap.Int("documents", len(docs)))

	chunks, err := idx.splitter.Split(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}
	idx.logger.Info("documents split", zap.Int("chunks", len(chunks)))

	chunks, err = AssignIDs(chunks)
	if err != nil {
		return nil, err
	}

	res, err := idx.Sync(ctx, chunks)
	if err != nil {
		return nil, err
	}
	res.Documents = len(docs)
	return res, nil
}

// Sync adds the chunks whose IDs are not yet in the store, preserving their order.
// The store is queried once; nothing is written when every chunk is already present.
func (idx *Indexer) Sync(ctx context.Context, chunks []models.Chunk) (*Result, error) {
	existing, err := idx.store.ExistingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing ids: %w", err)
	}
	idx.logger.Info("existing entries in store", zap.Int("count", len(existing)))

	res := &Result{Chunks: len(chunks), Existing: len(existing)}
	var items []storage.Item
	for _, c := range chunks {
		if c.ID == "" {
			return nil, fmt.Errorf("chunk %d of %s page %d has no id", c.Index, c.Source, c.Page)
		}
		if _, ok := existing[c.ID]; ok {
			continue
		}
		items = append(items, storage.Item{ID: c.ID, Text: c.Content, Metadata: c.Metadata()})
		res.AddedIDs = append(res.AddedIDs, c.ID)
	}

	if len(items) == 0 {
		idx.logger.Info("no new documents to add")
		return res, nil
	}

	idx.logger.Info("adding new entries", zap.Int("count", len(items)))
	if err := idx.store.AddBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to add entries: %w", err)
	}
	if err := idx.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit entries: %w", err)
	}
	res.Added = len(items)
	return res, nil
}
