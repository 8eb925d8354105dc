package embedding

import "path/filepath"

// ONNXOptions configures a local ONNX sentence-embedding model.
type ONNXOptions struct {
	// ModelPath is the .onnx file. It is opened on first use.
	ModelPath string
	// TokenizerPath is the model's tokenizer.json. Defaults to tokenizer.json next to ModelPath.
	TokenizerPath string
	// OutputName is the per-token hidden state output, mean-pooled into one vector.
	OutputName string
	Device     string
	// Dimensions is the hidden size of the model.
	Dimensions int
	MaxTokens  int
	// RuntimeLibrary overrides the onnxruntime shared library location.
	RuntimeLibrary string
}

func (o ONNXOptions) withDefaults() ONNXOptions {
	if o.TokenizerPath == "" && o.ModelPath != "" {
		o.TokenizerPath = filepath.Join(filepath.Dir(o.ModelPath), "tokenizer.json")
	}
	if o.OutputName == "" {
		o.OutputName = "last_hidden_state"
	}
	if o.Dimensions <= 0 {
		o.Dimensions = 384
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 256
	}
	return o
}
