package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.Device == "" {
		cfg.Embedding.Device = "cpu"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.Normalize == nil {
		t := true
		cfg.Embedding.Normalize = &t
	}
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	if cfg.Chunking.ChunkSize == nil {
		size := 512
		cfg.Chunking.ChunkSize = &size
	}
	if cfg.Chunking.ChunkOverlap == nil {
		overlap := 50
		if size := *cfg.Chunking.ChunkSize; size <= overlap {
			overlap = size / 10
		}
		cfg.Chunking.ChunkOverlap = &overlap
	}
}
