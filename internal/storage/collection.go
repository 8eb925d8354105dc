package storage

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kura/internal/keyword"
	"github.com/hyperjump/kura/internal/models"
	"github.com/hyperjump/kura/internal/vector"
)

// File names inside a collection directory.
const (
	DatabaseFile  = "kura.sqlite3"
	VectorFile    = "vectors.idx"
	FullTextDir   = "fulltext"
	collectionDir = 0755
)

// Collection is the on-disk vector store: SQLite rows, a vector snapshot and a full-text segment.
// SQLite is authoritative; the other two are rebuilt from it on open when they disagree.
type Collection struct {
	path     string
	db       *SQLiteStorage
	vectors  vector.Index
	text     keyword.TextIndex
	embedder Embedder
	logger   *zap.Logger

	staged    []*models.IndexEntry
	stagedIDs map[string]struct{}
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the collection logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collection) {
		c.logger = logger
	}
}

var _ VectorStore = (*Collection)(nil)

// OpenCollection opens or creates the collection at path.
func OpenCollection(ctx context.Context, path string, embedder Embedder, opts ...Option) (*Collection, error) {
	if path == "" {
		return nil, errors.New("collection path is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if err := os.MkdirAll(path, collectionDir); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}

	c := &Collection{
		path:      path,
		embedder:  embedder,
		logger:    zap.NewNop(),
		stagedIDs: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	db, err := NewSQLiteStorage(filepath.Join(path, DatabaseFile))
	if err != nil {
		return nil, err
	}
	c.db = db

	idx, err := vector.NewMemoryIndex(0)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := idx.Load(c.vectorPath()); err != nil {
		c.logger.Warn("vector snapshot unreadable, rebuilding", zap.Error(err))
		idx, _ = vector.NewMemoryIndex(0)
	}
	c.vectors = idx

	text, err := keyword.NewBleveIndex(filepath.Join(path, FullTextDir))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.text = text

	if err := c.reconcile(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// reconcile rebuilds the vector snapshot and full-text segment when their sizes differ from SQLite,
// which happens after an interrupted commit or when a derived file was removed.
func (c *Collection) reconcile(ctx context.Context) error {
	count, err := c.db.CountEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to count entries: %w", err)
	}
	textCount, err := c.text.DocCount()
	if err != nil {
		return fmt.Errorf("failed to count full-text documents: %w", err)
	}
	vectorsStale := int64(c.vectors.Size()) != count
	textStale := int64(textCount) != count
	if !vectorsStale && !textStale {
		return nil
	}

	entries, err := c.db.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}
	if vectorsStale {
		c.logger.Info("rebuilding vector snapshot",
			zap.Int("snapshot", c.vectors.Size()),
			zap.Int64("entries", count))
		idx, err := vector.NewMemoryIndex(0)
		if err != nil {
			return err
		}
		ids, vecs := splitEntries(entries)
		if err := idx.Add(ctx, ids, vecs); err != nil {
			return fmt.Errorf("failed to rebuild vectors: %w", err)
		}
		if err := idx.Save(c.vectorPath()); err != nil {
			return fmt.Errorf("failed to save vectors: %w", err)
		}
		c.vectors = idx
	}
	if textStale {
		c.logger.Info("rebuilding full-text segment",
			zap.Uint64("indexed", textCount),
			zap.Int64("entries", count))
		if err := c.text.IndexBatch(ctx, entries); err != nil {
			return fmt.Errorf("failed to rebuild full-text segment: %w", err)
		}
	}
	return nil
}

// ExistingIDs returns every stored ID.
func (c *Collection) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := c.db.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// AddBatch embeds all item texts with a single embedder call and stages the resulting entries.
// A repeated, staged or stored ID fails the batch with ErrDuplicateID. A vector whose width
// differs from the collection's fails it with ErrDimensionMismatch. Either way nothing is staged.
func (c *Collection) AddBatch(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return errors.New("item id is required")
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s repeated in batch", ErrDuplicateID, item.ID)
		}
		if _, dup := c.stagedIDs[item.ID]; dup {
			return fmt.Errorf("%w: %s already staged", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
		ids[i] = item.ID
	}
	stored, err := c.db.FilterExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check ids: %w", err)
	}
	if len(stored) > 0 {
		return fmt.Errorf("%w: %s already stored", ErrDuplicateID, stored[0])
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}
	vecs, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(vecs) != len(items) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(items))
	}
	if err := c.checkDimensions(ids, vecs); err != nil {
		return err
	}

	now := time.Now()
	for i, item := range items {
		c.staged = append(c.staged, &models.IndexEntry{
			ID:        item.ID,
			Content:   item.Text,
			Metadata:  maps.Clone(item.Metadata),
			Embedding: vecs[i],
			CreatedAt: now,
		})
		c.stagedIDs[item.ID] = struct{}{}
	}
	c.logger.Debug("staged batch", zap.Int("items", len(items)), zap.Int("staged", len(c.staged)))
	return nil
}

// Commit writes staged entries to SQLite in one transaction, then appends them to the vector
// snapshot and the full-text segment. A failure after the SQLite commit is repaired on next open.
func (c *Collection) Commit(ctx context.Context) error {
	if len(c.staged) == 0 {
		return nil
	}
	ids, vecs := splitEntries(c.staged)
	if err := c.checkDimensions(ids, vecs); err != nil {
		return err
	}
	if err := c.db.BatchCreateEntries(ctx, c.staged); err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	entries := c.staged
	c.staged = nil
	c.stagedIDs = make(map[string]struct{})

	if err := c.vectors.Add(ctx, ids, vecs); err != nil {
		return fmt.Errorf("failed to add vectors: %w", err)
	}
	if err := c.vectors.Save(c.vectorPath()); err != nil {
		return fmt.Errorf("failed to save vectors: %w", err)
	}
	if err := c.text.IndexBatch(ctx, entries); err != nil {
		return fmt.Errorf("failed to index text: %w", err)
	}
	c.logger.Info("committed entries", zap.Int("count", len(entries)))
	return nil
}

// Count returns the number of stored entries.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	return c.db.CountEntries(ctx)
}

// Path returns the collection directory.
func (c *Collection) Path() string {
	return c.path
}

// Close releases the database and indexes. Staged entries that were not committed are dropped.
func (c *Collection) Close() error {
	var errs []error
	if c.text != nil {
		errs = append(errs, c.text.Close())
	}
	if c.vectors != nil {
		errs = append(errs, c.vectors.Close())
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	return errors.Join(errs...)
}

// checkDimensions fails unless every vector has the collection's width. An empty collection
// takes its width from the first staged entry, or else from the first vector.
func (c *Collection) checkDimensions(ids []string, vecs [][]float32) error {
	want := c.vectors.Dimensions()
	if want == 0 && len(c.staged) > 0 {
		want = len(c.staged[0].Embedding)
	}
	if want == 0 && len(vecs) > 0 {
		want = len(vecs[0])
	}
	for i, v := range vecs {
		if len(v) == 0 || len(v) != want {
			return fmt.Errorf("%w: %s has %d values, collection uses %d", ErrDimensionMismatch, ids[i], len(v), want)
		}
	}
	return nil
}

func (c *Collection) vectorPath() string {
	return filepath.Join(c.path, VectorFile)
}

func splitEntries(entries []*models.IndexEntry) ([]string, [][]float32) {
	ids := make([]string, len(entries))
	vecs := make([][]float32, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		vecs[i] = e.Embedding
	}
	return ids, vecs
}
