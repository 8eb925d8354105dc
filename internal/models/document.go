// Package models defines the values that flow through an ingestion run.
package models

import (
	"strconv"
	"time"
)

// NoPage marks a document or chunk whose source carried no page number.
const NoPage = -1

// Metadata keys written alongside every stored chunk.
const (
	MetaKeySource = "source"
	MetaKeyPage   = "page"
)

// Document is the text of one PDF page.
type Document struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// Chunk is a bounded slice of a Document's text. ID is empty until assigned.
type Chunk struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// PageKey returns "source:page", the grouping key for chunk indices.
func (c Chunk) PageKey() string {
	return c.Source + ":" + strconv.Itoa(c.Page)
}

// Metadata returns a fresh metadata map for the chunk.
func (c Chunk) Metadata() map[string]interface{} {
	return map[string]interface{}{
		MetaKeySource: c.Source,
		MetaKeyPage:   c.Page,
	}
}

// IndexEntry is a persisted vector index row.
type IndexEntry struct {
	ID        string                 `json:"id" db:"id"`
	Content   string                 `json:"content" db:"document"`
	Metadata  map[string]interface{} `json:"metadata" db:"metadata"`
	Embedding []float32              `json:"-" db:"embedding"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}
