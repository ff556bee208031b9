package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dataset-builder/internal/dataset"
)

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := dataset.New()
	d.Items = append(d.Items, dataset.Item{
		ID:              "cat_001",
		Image:           "images/cat_001.jpg",
		AttributeValues: map[string]string{"ID": "cat_001", "species": "cat"},
		Notes:           "outdoor shot",
	})
	d.Touch()

	if err := Generate(dir, d); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, PageName))
	if err != nil {
		t.Fatalf("generated page missing: %v", err)
	}
	page := string(raw)

	for _, want := range []string{
		`"id":"cat_001"`,
		`"species":"cat"`,
		"/save",
		"/remove",
		"/refresh",
		"/restart",
		"?ping=1",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("generated page missing %q", want)
		}
	}
}

func TestGenerate_EmptyDataset(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(dir, dataset.New()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, PageName)); err != nil {
		t.Errorf("page not written: %v", err)
	}
}
