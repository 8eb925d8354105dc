package config

import (
	"fmt"
	"strconv"
)

// Environment variable names.
const (
	EnvModelName      = "EMBED_MODEL_NAME"
	EnvTokenizerPath  = "EMBED_TOKENIZER_PATH"
	EnvProvider       = "EMBED_PROVIDER"
	EnvDevice         = "MODEL_RUN_DEVICE"
	EnvNormalize      = "EMBED_NORMALIZE"
	EnvBaseURL        = "EMBED_BASE_URL"
	EnvAPIKey         = "EMBED_API_KEY"
	EnvDimensions     = "EMBED_DIMENSIONS"
	EnvMaxTokens      = "EMBED_MAX_TOKENS"
	EnvRuntimeLibrary = "ONNXRUNTIME_LIB"
	EnvStoragePath    = "CHROMA_PATH"
	EnvDataPath       = "DATA_PATH"
	EnvChunkSize      = "CHUNK_SIZE"
	EnvChunkOverlap   = "CHUNK_OVERLAP"
	EnvDebug          = "KURA_DEBUG"
	EnvOutput         = "KURA_OUTPUT"
	// EnvConfigFile names the optional YAML file read before the environment.
	EnvConfigFile = "KURA_CONFIG"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with every variable that lookup reports as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvModelName, &cfg.Embedding.ModelName},
		{EnvTokenizerPath, &cfg.Embedding.TokenizerPath},
		{EnvProvider, &cfg.Embedding.Provider},
		{EnvDevice, &cfg.Embedding.Device},
		{EnvBaseURL, &cfg.Embedding.BaseURL},
		{EnvAPIKey, &cfg.Embedding.APIKey},
		{EnvRuntimeLibrary, &cfg.Embedding.RuntimeLibrary},
		{EnvStoragePath, &cfg.Storage.Path},
		{EnvDataPath, &cfg.DataPath},
		{EnvOutput, &cfg.Output},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvDimensions, &cfg.Embedding.Dimensions},
		{EnvMaxTokens, &cfg.Embedding.MaxTokens},
	}
	for _, s := range ints {
		v, ok := lookup(s.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, s.key, v)
		}
		*s.dst = n
	}

	optInts := []struct {
		key string
		dst **int
	}{
		{EnvChunkSize, &cfg.Chunking.ChunkSize},
		{EnvChunkOverlap, &cfg.Chunking.ChunkOverlap},
	}
	for _, s := range optInts {
		v, ok := lookup(s.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, s.key, v)
		}
		*s.dst = &n
	}
	if v, ok := lookup(EnvNormalize); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, EnvNormalize, v)
		}
		cfg.Embedding.Normalize = &b
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, EnvDebug, v)
		}
		cfg.Debug = b
	}
	return nil
}
