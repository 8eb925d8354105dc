// Package storage persists chunk embeddings in a local collection.
package storage

import (
	"context"
	"errors"
)

// ErrDuplicateID is returned when an ID is added that the collection already holds or has staged.
var ErrDuplicateID = errors.New("duplicate entry id")

// ErrDimensionMismatch is returned when an embedding's width differs from the collection's.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Item is a chunk to be embedded and stored.
type Item struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
}

// VectorStore is the persistent collection the ingestion pipeline writes to.
type VectorStore interface {
	// ExistingIDs returns every stored ID. Content is not loaded.
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	// AddBatch embeds items and stages them for the next Commit.
	AddBatch(ctx context.Context, items []Item) error
	// Commit makes staged items durable.
	Commit(ctx context.Context) error
	Close() error
}

// Embedder is the part of an embedding provider the collection needs.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
