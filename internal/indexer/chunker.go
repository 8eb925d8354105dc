package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kura/internal/models"
	"github.com/tmc/langchaingo/textsplitter"
)

// Separators tried in order when splitting text: paragraphs, lines, words, then characters.
var Separators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts documents into overlapping chunks of at most chunkSize characters.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	splitter     textsplitter.RecursiveCharacter
}

// NewSplitter creates a splitter. Sizes are measured in characters (runes).
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(Separators),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		),
	}, nil
}

// Split returns the chunks of every document, in document order then split order.
// Chunks carry their document's source and page but no ID yet. Blank documents yield nothing.
func (s *Splitter) Split(docs []models.Document) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		parts, err := s.splitter.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split %s page %d: %w", doc.Source, doc.Page, err)
		}
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				Source:  doc.Source,
				Page:    doc.Page,
				Content: part,
			})
		}
	}
	return chunks, nil
}
