package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/kura/internal/indexer"
)

func TestWriteRunSummary_JSON(t *testing.T) {
	res := &indexer.Result{Documents: 2, Chunks: 3, Existing: 1, Added: 2, AddedIDs: []string{"a.pdf:1:0", "b.pdf:0:0"}}
	var buf bytes.Buffer
	if err := WriteRunSummary(&buf, NewRunSummary("run-1", "/tmp/chroma", false, res, 4096), OutputJSON); err != nil {
		t.Fatalf("WriteRunSummary: %v", err)
	}
	var got RunSummary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if got.RunID != "run-1" || got.Added != 2 || got.Existing != 1 || got.StoreBytes != 4096 {
		t.Errorf("got %+v", got)
	}
	if len(got.AddedIDs) != 2 || got.AddedIDs[1] != "b.pdf:0:0" {
		t.Errorf("added_ids = %v", got.AddedIDs)
	}
}

func TestWriteRunSummary_JSONEmptyIDs(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRunSummary(&buf, NewRunSummary("r", "p", false, &indexer.Result{}, 0), OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"added_ids": []`) {
		t.Errorf("added_ids should be an empty array, got:\n%s", buf.String())
	}
}

func TestWriteRunSummary_Text(t *testing.T) {
	var ids []string
	for i := 0; i < 12; i++ {
		ids = append(ids, fmt.Sprintf("a.pdf:0:%d", i))
	}
	res := &indexer.Result{Documents: 1, Chunks: 12, Added: 12, AddedIDs: ids}
	var buf bytes.Buffer
	if err := WriteRunSummary(&buf, NewRunSummary("run-2", "/data/chroma", true, res, 10), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Reset store at /data/chroma",
		"Loaded 1 page(s), split into 12 chunk(s); store held 0 entries",
		"Added 12 new chunks:",
		"a.pdf:0:9",
		"... and 2 more",
		"Store size: 10 bytes (run run-2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "a.pdf:0:10") {
		t.Errorf("output should list at most %d ids:\n%s", maxListedIDs, out)
	}
}

func TestWriteRunSummary_TextNothingAdded(t *testing.T) {
	var buf bytes.Buffer
	res := &indexer.Result{Documents: 1, Chunks: 1, Existing: 1}
	if err := WriteRunSummary(&buf, NewRunSummary("r", "p", false, res, 0), OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No new documents to add") {
		t.Errorf("got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "store held 1 entry") {
		t.Errorf("got:\n%s", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"text": OutputText, "JSON": OutputJSON} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
