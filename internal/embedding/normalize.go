package embedding

import (
	"context"

	"github.com/hyperjump/kura/pkg/utils"
)

type normalizedEmbedder struct {
	inner Embedder
}

// Normalized wraps e so every vector it returns has unit L2 norm.
func Normalized(e Embedder) Embedder {
	if _, ok := e.(*normalizedEmbedder); ok {
		return e
	}
	return &normalizedEmbedder{inner: e}
}

func (n *normalizedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := n.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for _, v := range vecs {
		utils.NormalizeL2(v)
	}
	return vecs, nil
}

func (n *normalizedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := n.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	utils.NormalizeL2(v)
	return v, nil
}

func (n *normalizedEmbedder) Close() error {
	return n.inner.Close()
}
