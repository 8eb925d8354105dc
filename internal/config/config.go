// Package config loads and validates kura's configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingValue is returned when a required setting is absent.
	ErrMissingValue = errors.New("missing required setting")
	// ErrInvalidValue is returned when a setting cannot be parsed or is out of range.
	ErrInvalidValue = errors.New("invalid setting")
)

// Run summary formats accepted by Output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds all configuration for an ingestion run.
type Config struct {
	Debug     bool            `yaml:"debug"`
	DataPath  string          `yaml:"data_path"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`

	// Output selects the run summary format: "text" or "json".
	Output string `yaml:"output"`
}

// StorageConfig holds the persistent vector index location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	ModelName      string `yaml:"model_name"`
	TokenizerPath  string `yaml:"tokenizer_path"`
	Device         string `yaml:"device"`
	Normalize      *bool  `yaml:"normalize"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"-"`
	Dimensions     int    `yaml:"dimensions"`
	MaxTokens      int    `yaml:"max_tokens"`
	RuntimeLibrary string `yaml:"runtime_library"`
}

// NormalizeOrDefault returns whether embeddings are L2-normalized; defaults to true when unset.
func (e *EmbeddingConfig) NormalizeOrDefault() bool {
	if e.Normalize != nil {
		return *e.Normalize
	}
	return true
}

// ChunkingConfig holds splitter settings, in characters.
type ChunkingConfig struct {
	ChunkSize    *int `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap"`
}

// SizeOrDefault returns the configured chunk size; 0 when unset.
func (c *ChunkingConfig) SizeOrDefault() int {
	if c.ChunkSize != nil {
		return *c.ChunkSize
	}
	return 0
}

// OverlapOrDefault returns the configured overlap; 0 when unset.
func (c *ChunkingConfig) OverlapOrDefault() int {
	if c.ChunkOverlap != nil {
		return *c.ChunkOverlap
	}
	return 0
}

// Load builds the configuration from the optional YAML file at path, a .env file in the
// working directory, and the process environment, in increasing precedence.
// The result has defaults applied and is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	configDir := filepath.Dir(path)
	cfg.DataPath = expandPath(cfg.DataPath, configDir)
	cfg.Storage.Path = expandPath(cfg.Storage.Path, configDir)
	if cfg.Embedding.Provider == "" || cfg.Embedding.Provider == "onnx" {
		cfg.Embedding.ModelName = expandPath(cfg.Embedding.ModelName, configDir)
		cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	}
	return nil
}

// Validate checks required settings and ranges.
func (c *Config) Validate() error {
	if c.Embedding.ModelName == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, EnvModelName)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, EnvStoragePath)
	}
	if c.DataPath == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, EnvDataPath)
	}
	size := c.Chunking.SizeOrDefault()
	if size <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidValue, EnvChunkSize, size)
	}
	if overlap := c.Chunking.OverlapOrDefault(); overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: %s must be in [0, %d), got %d",
			ErrInvalidValue, EnvChunkOverlap, size, overlap)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalidValue, EnvOutput, OutputText, OutputJSON, c.Output)
	}
	return nil
}

// expandPath resolves paths starting with "./" against configDir; other paths are kept as-is.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
