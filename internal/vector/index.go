// Package vector holds the embedding vectors of a collection.
package vector

import "context"

// Index stores embedding vectors keyed by entry ID.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Save(path string) error
	Load(path string) error
	Reset()
	Size() int
	Dimensions() int
	Close() error
}
