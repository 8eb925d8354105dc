// Package keyword maintains the full-text segment stored next to a collection's vectors.
package keyword

import (
	"context"

	"github.com/hyperjump/kura/internal/models"
)

// TextIndex indexes entry text and metadata for keyword lookup.
type TextIndex interface {
	IndexBatch(ctx context.Context, entries []*models.IndexEntry) error
	DocCount() (uint64, error)
	Close() error
}
