package e2e

import (
	"strings"
	"testing"
)

func TestBuildCorpus_Shape(t *testing.T) {
	c := BuildCorpus(5, 3, 4)
	if len(c.Files) != 5 {
		t.Fatalf("expected 5 files, got %d", len(c.Files))
	}
	if c.TotalPages != 15 {
		t.Errorf("expected 15 pages, got %d", c.TotalPages)
	}
	names := make(map[string]bool)
	for _, f := range c.Files {
		if names[f.Name] {
			t.Errorf("duplicate file name %q", f.Name)
		}
		names[f.Name] = true
		if !strings.HasSuffix(f.Name, ".pdf") {
			t.Errorf("file %q should have a .pdf extension", f.Name)
		}
		for i, p := range f.Pages {
			if strings.TrimSpace(p) == "" {
				t.Errorf("%s page %d is empty", f.Name, i)
			}
		}
	}
}

func TestBuildCorpus_Deterministic(t *testing.T) {
	a := BuildCorpus(3, 2, 2)
	b := BuildCorpus(3, 2, 2)
	for i := range a.Files {
		for j := range a.Files[i].Pages {
			if a.Files[i].Pages[j] != b.Files[i].Pages[j] {
				t.Fatalf("file %d page %d differs between builds", i, j)
			}
		}
	}
}
