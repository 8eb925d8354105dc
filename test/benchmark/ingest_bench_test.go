package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/kura/internal/embedding"
	"github.com/hyperjump/kura/internal/indexer"
	"github.com/hyperjump/kura/internal/models"
	"github.com/hyperjump/kura/internal/storage"
	"github.com/hyperjump/kura/internal/vector"
)

func benchDocuments(n int) []models.Document {
	page := strings.Repeat("Rain gauges are read every morning at eight. ", 40)
	docs := make([]models.Document, n)
	for i := range docs {
		docs[i] = models.Document{Source: fmt.Sprintf("data/report-%03d.pdf", i/10), Page: i % 10, Content: page}
	}
	return docs
}

func BenchmarkSplit(b *testing.B) {
	s, _ := indexer.NewSplitter(800, 80)
	docs := benchDocuments(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Split(docs)
	}
}

func BenchmarkAssignIDs(b *testing.B) {
	s, _ := indexer.NewSplitter(200, 20)
	chunks, _ := s.Split(benchDocuments(100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = indexer.AssignIDs(chunks)
	}
}

func BenchmarkMemoryIndexAdd(b *testing.B) {
	ctx := context.Background()
	vecs := make([][]float32, 1000)
	ids := make([]string, 1000)
	for i := range vecs {
		vecs[i] = make([]float32, 384)
		vecs[i][0] = float32(i) / 1000
		ids[i] = fmt.Sprintf("data/a.pdf:%d:0", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx, _ := vector.NewMemoryIndex(384)
		_ = idx.Add(ctx, ids, vecs)
	}
}

func BenchmarkMockEmbedder_EmbedBatch(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	texts := make([]string, 64)
	for i := range texts {
		texts[i] = fmt.Sprintf("benchmark chunk text number %d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.EmbedBatch(ctx, texts)
	}
}

func BenchmarkCollectionAddCommit(b *testing.B) {
	ctx := context.Background()
	items := make([]storage.Item, 200)
	for i := range items {
		items[i] = storage.Item{
			ID:       fmt.Sprintf("data/a.pdf:%d:%d", i/10, i%10),
			Text:     fmt.Sprintf("chunk %d of the benchmark report", i),
			Metadata: map[string]interface{}{models.MetaKeySource: "data/a.pdf", models.MetaKeyPage: i / 10},
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		dir := b.TempDir()
		coll, err := storage.OpenCollection(ctx, dir, embedding.NewMockEmbedder(64))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := coll.AddBatch(ctx, items); err != nil {
			b.Fatal(err)
		}
		if err := coll.Commit(ctx); err != nil {
			b.Fatal(err)
		}
		b.StopTimer()
		_ = coll.Close()
		b.StartTimer()
	}
}
