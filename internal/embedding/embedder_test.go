package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/kura/pkg/utils"
	"github.com/tmc/langchaingo/embeddings"
)

func TestNew_mock(t *testing.T) {
	e, err := New(Config{Provider: ProviderMock, ModelName: "ignored", Dimensions: 8, Normalize: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()
	vecs, err := e.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 8 {
		t.Fatalf("unexpected shape: %d x %d", len(vecs), len(vecs[0]))
	}
	for i, v := range vecs {
		if n := utils.L2Norm(v); math.Abs(n-1) > 1e-5 {
			t.Errorf("vector %d norm = %v, want 1", i, n)
		}
	}
}

func TestNew_withoutNormalize(t *testing.T) {
	e, err := New(Config{Provider: "MOCK", Dimensions: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("expected bare MockEmbedder when normalization is off, got %T", e)
	}
}

func TestNew_unknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "word2vec", ModelName: "m"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestNew_remoteProvidersDoNotConnect(t *testing.T) {
	for _, provider := range []string{ProviderOllama, ProviderOpenAI} {
		e, err := New(Config{Provider: provider, ModelName: "nomic-embed-text", BaseURL: "http://127.0.0.1:1"})
		if err != nil {
			t.Errorf("%s: construction should not contact the server: %v", provider, err)
			continue
		}
		_ = e.Close()
	}
	if _, err := New(Config{Provider: ProviderOllama}); err == nil {
		t.Error("expected error for empty ollama model")
	}
}

func TestNormalized(t *testing.T) {
	mock := NewMockEmbedder(3)
	n := Normalized(mock)
	if Normalized(n) != n {
		t.Error("wrapping twice should return the same embedder")
	}
	v, err := n.EmbedQuery(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if norm := utils.L2Norm(v); math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %v", norm)
	}
}

func TestMockEmbedder_deterministicAndCounted(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, _ := e.EmbedBatch(ctx, []string{"same", "other"})
	b, _ := e.EmbedBatch(ctx, []string{"same"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("same text should embed identically")
		}
	}
	if e.BatchCalls() != 2 || e.TextsEmbedded() != 3 {
		t.Errorf("calls=%d texts=%d", e.BatchCalls(), e.TextsEmbedded())
	}
	if NewMockEmbedder(0).Dimensions() != 384 {
		t.Error("default mock dimension should be 384")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.EmbedBatch(cancelled, []string{"x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRemoteEmbedder(t *testing.T) {
	var calls int
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(i), 1}
		}
		return out, nil
	})
	r, err := newRemoteEmbedder(client)
	if err != nil {
		t.Fatal(err)
	}
	vecs, err := r.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 || vecs[2][0] != 2 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
	empty, err := r.EmbedBatch(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty batch: %v %v", empty, err)
	}
	if calls != 1 {
		t.Errorf("client calls = %d, want 1", calls)
	}
}

func TestRemoteEmbedder_shortResponse(t *testing.T) {
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	r, _ := newRemoteEmbedder(client)
	if _, err := r.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error when the server returns fewer vectors than texts")
	}
}
