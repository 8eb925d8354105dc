package models

import "testing"

func TestChunk_PageKey(t *testing.T) {
	c := Chunk{Source: "data/a.pdf", Page: 3}
	if got := c.PageKey(); got != "data/a.pdf:3" {
		t.Errorf("PageKey() = %q", got)
	}
}

func TestChunk_MetadataIsFresh(t *testing.T) {
	c := Chunk{Source: "a.pdf", Page: 1}
	m1 := c.Metadata()
	m1[MetaKeySource] = "changed"
	m2 := c.Metadata()
	if m2[MetaKeySource] != "a.pdf" {
		t.Errorf("metadata map shared between calls: %v", m2)
	}
	if m2[MetaKeyPage] != 1 {
		t.Errorf("page = %v", m2[MetaKeyPage])
	}
}
