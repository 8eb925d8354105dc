package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// RemoteEmbedder embeds text through a langchaingo embeddings client.
type RemoteEmbedder struct {
	embedder embeddings.Embedder
}

// NewOllamaEmbedder creates an embedder backed by an Ollama server. An empty serverURL
// uses the client default (OLLAMA_HOST or localhost).
func NewOllamaEmbedder(model, serverURL string) (*RemoteEmbedder, error) {
	if model == "" {
		return nil, errors.New("ollama model name is required")
	}
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return newRemoteEmbedder(client)
}

// NewOpenAIEmbedder creates an embedder for an OpenAI-compatible embeddings API.
// Local servers that need no authentication accept an empty token.
func NewOpenAIEmbedder(model, baseURL, token string) (*RemoteEmbedder, error) {
	if model == "" {
		return nil, errors.New("openai embedding model name is required")
	}
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return newRemoteEmbedder(client)
}

func newRemoteEmbedder(client embeddings.EmbedderClient) (*RemoteEmbedder, error) {
	e, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return &RemoteEmbedder{embedder: e}, nil
}

// EmbedBatch embeds texts in one request per langchaingo batch.
func (r *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vecs, err := r.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// EmbedQuery embeds a single query text.
func (r *RemoteEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return v, nil
}

// Close is a no-op; the HTTP clients hold no resources.
func (r *RemoteEmbedder) Close() error {
	return nil
}
