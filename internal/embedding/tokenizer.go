package embedding

import (
	"fmt"
	"os"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer produces BERT-style model inputs (input_ids, attention_mask, token_type_ids)
// padded to exactly maxTokens positions.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// WordPieceTokenizer encodes text with the Hugging Face tokenizer.json shipped next to a model.
type WordPieceTokenizer struct {
	tk *tokenizer.Tokenizer
}

// LoadTokenizer reads a tokenizer.json file.
func LoadTokenizer(path string) (*WordPieceTokenizer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", path, err)
	}
	return &WordPieceTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens and fits the result to maxTokens.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("tokenize: %w", err)
	}
	inputIDs, attentionMask, tokenTypeIDs = fitSequence(enc.Ids, enc.AttentionMask, enc.TypeIds, maxTokens)
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// fitSequence drops any padding the tokenizer added, truncates to maxTokens while
// keeping the closing special token, then zero-pads every slice to maxTokens.
// A missing mask or type slice is treated as all ones or all zeros.
func fitSequence(ids, mask, types []int, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	if maxTokens <= 0 {
		return inputIDs, attentionMask, tokenTypeIDs
	}

	n := len(ids)
	if len(mask) == len(ids) {
		for n > 0 && mask[n-1] == 0 {
			n--
		}
	}

	// src maps output positions to token positions.
	src := make([]int, 0, maxTokens)
	if n <= maxTokens {
		for i := 0; i < n; i++ {
			src = append(src, i)
		}
	} else {
		for i := 0; i < maxTokens-1; i++ {
			src = append(src, i)
		}
		src = append(src, n-1)
	}

	for pos, i := range src {
		inputIDs[pos] = int64(ids[i])
		attentionMask[pos] = 1
		if i < len(types) {
			tokenTypeIDs[pos] = int64(types[i])
		}
	}
	return inputIDs, attentionMask, tokenTypeIDs
}
