// Package cli formats kura's command-line output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kura/internal/indexer"
	"github.com/hyperjump/kura/pkg/utils"
)

// OutputFormat is the format of the run summary.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// maxListedIDs caps the IDs printed in text output.
const maxListedIDs = 10

// RunSummary is what an ingestion run reports.
type RunSummary struct {
	RunID      string   `json:"run_id"`
	StorePath  string   `json:"store_path"`
	Reset      bool     `json:"reset"`
	Documents  int      `json:"documents"`
	Chunks     int      `json:"chunks"`
	Existing   int      `json:"existing"`
	Added      int      `json:"added"`
	AddedIDs   []string `json:"added_ids"`
	StoreBytes int64    `json:"store_bytes"`
}

// NewRunSummary builds a summary from an indexer result.
func NewRunSummary(runID, storePath string, reset bool, res *indexer.Result, storeBytes int64) *RunSummary {
	s := &RunSummary{
		RunID:      runID,
		StorePath:  storePath,
		Reset:      reset,
		StoreBytes: storeBytes,
		AddedIDs:   []string{},
	}
	if res != nil {
		s.Documents = res.Documents
		s.Chunks = res.Chunks
		s.Existing = res.Existing
		s.Added = res.Added
		if res.AddedIDs != nil {
			s.AddedIDs = res.AddedIDs
		}
	}
	return s
}

// ParseOutputFormat validates the configured output format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

// WriteRunSummary writes s to w in the given format.
func WriteRunSummary(w io.Writer, s *RunSummary, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return writeRunSummaryText(w, s)
	}
}

func writeRunSummaryText(w io.Writer, s *RunSummary) error {
	var b strings.Builder
	if s.Reset {
		fmt.Fprintf(&b, "Reset store at %s\n", s.StorePath)
	}
	fmt.Fprintf(&b, "Loaded %d page(s), split into %d chunk(s); store held %d entr%s\n",
		s.Documents, s.Chunks, s.Existing, plural(s.Existing, "y", "ies"))
	if s.Added == 0 {
		b.WriteString("No new documents to add\n")
	} else {
		fmt.Fprintf(&b, "Added %d new chunk%s:\n", s.Added, plural(s.Added, "", "s"))
		for i, id := range s.AddedIDs {
			if i == maxListedIDs {
				fmt.Fprintf(&b, "  ... and %d more\n", len(s.AddedIDs)-maxListedIDs)
				break
			}
			fmt.Fprintf(&b, "  %s\n", utils.Truncate(id, 120))
		}
	}
	fmt.Fprintf(&b, "Store size: %d bytes (run %s)\n", s.StoreBytes, s.RunID)
	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
