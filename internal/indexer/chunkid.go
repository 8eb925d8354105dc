package indexer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hyperjump/kura/internal/models"
)

// ErrMissingPage is returned by AssignIDs for a chunk without page information.
var ErrMissingPage = errors.New("chunk has no page")

// AssignIDs returns copies of chunks with IDs of the form "source:page:index". The index counts
// chunks within a run of consecutive chunks that share source and page, starting at 0, and
// restarts whenever the pair changes. The input slice is not modified.
func AssignIDs(chunks []models.Chunk) ([]models.Chunk, error) {
	out := make([]models.Chunk, len(chunks))
	lastPageKey := ""
	index := 0
	for i, c := range chunks {
		if c.Page == models.NoPage {
			return nil, fmt.Errorf("%w: chunk %d of %s", ErrMissingPage, i, c.Source)
		}
		pageKey := c.PageKey()
		if i > 0 && pageKey == lastPageKey {
			index++
		} else {
			index = 0
		}
		lastPageKey = pageKey

		c.Index = index
		c.ID = pageKey + ":" + strconv.Itoa(index)
		out[i] = c
	}
	return out, nil
}
