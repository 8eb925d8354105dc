// Package embedding builds text embedders for the configured provider.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// Provider names accepted by New.
const (
	ProviderONNX   = "onnx"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// Config selects and parameterizes an embedding provider.
type Config struct {
	Provider  string
	ModelName string
	// TokenizerPath is the ONNX model's tokenizer.json. Empty means next to the model file.
	TokenizerPath string
	// Device is an execution hint such as "cpu", "cuda" or "cuda:1". Only the ONNX provider uses it.
	Device    string
	Normalize bool
	BaseURL   string
	APIKey    string
	// Dimensions and MaxTokens size the ONNX tensors and the mock vectors.
	Dimensions     int
	MaxTokens      int
	RuntimeLibrary string
}

// New builds the embedder described by cfg. The model identifier is not validated here:
// local models are loaded on first use and remote models are resolved by the server,
// so a bad identifier surfaces on the first embed call.
func New(cfg Config) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderONNX, "":
		e, err = NewONNXEmbedder(ONNXOptions{
			ModelPath:      cfg.ModelName,
			TokenizerPath:  cfg.TokenizerPath,
			Device:         cfg.Device,
			Dimensions:     cfg.Dimensions,
			MaxTokens:      cfg.MaxTokens,
			RuntimeLibrary: cfg.RuntimeLibrary,
		})
	case ProviderOllama:
		e, err = NewOllamaEmbedder(cfg.ModelName, cfg.BaseURL)
	case ProviderOpenAI:
		e, err = NewOpenAIEmbedder(cfg.ModelName, cfg.BaseURL, cfg.APIKey)
	case ProviderMock:
		e = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: %q (supported: onnx, ollama, openai, mock)", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedder: %w", cfg.Provider, err)
	}
	if cfg.Normalize {
		e = Normalized(e)
	}
	return e, nil
}
