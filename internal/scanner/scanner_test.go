package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_AddsItemsAndCopiesImages(t *testing.T) {
	imageDir := t.TempDir()
	outputDir := t.TempDir()
	writeFile(t, filepath.Join(imageDir, "cat_001.jpg"))
	writeFile(t, filepath.Join(imageDir, "dog_002.PNG"))
	writeFile(t, filepath.Join(imageDir, "readme.txt"))

	st := store.Open(filepath.Join(outputDir, "dataset_data.json"))
	s := New(imageDir, outputDir, st)

	n, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Scan() saw %d images, want 2", n)
	}

	snap := st.Snapshot()
	if len(snap.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(snap.Items))
	}
	if snap.Items[0].ID != "cat_001" {
		t.Errorf("items[0].ID = %q, want cat_001", snap.Items[0].ID)
	}
	if snap.Items[0].Image != "images/cat_001.jpg" {
		t.Errorf("items[0].Image = %q", snap.Items[0].Image)
	}
	if got := snap.Items[0].AttributeValues[dataset.IDAttributeName]; got != "cat_001" {
		t.Errorf("attribute_values[ID] = %q, want cat_001", got)
	}
	if snap.LastUpdated == "" {
		t.Error("Scan must stamp last_updated")
	}

	if _, err := os.Stat(filepath.Join(outputDir, "images", "cat_001.jpg")); err != nil {
		t.Errorf("copied image missing: %v", err)
	}
	if _, err := os.Stat(st.Path()); err != nil {
		t.Errorf("dataset file not saved: %v", err)
	}
}

func TestScan_RescanDoesNotDuplicate(t *testing.T) {
	imageDir := t.TempDir()
	outputDir := t.TempDir()
	writeFile(t, filepath.Join(imageDir, "cat_001.jpg"))

	st := store.Open(filepath.Join(outputDir, "dataset_data.json"))
	s := New(imageDir, outputDir, st)

	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Annotate, then rescan: the annotation must survive.
	snap := st.Snapshot()
	item := snap.Items[0]
	item.Notes = "keep me"
	st.UpsertItem(item)

	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap = st.Snapshot()
	if len(snap.Items) != 1 {
		t.Fatalf("rescan duplicated items: %d", len(snap.Items))
	}
	if snap.Items[0].Notes != "keep me" {
		t.Errorf("rescan overwrote annotations, notes = %q", snap.Items[0].Notes)
	}
}

func TestScan_MissingImageDir(t *testing.T) {
	outputDir := t.TempDir()
	st := store.Open(filepath.Join(outputDir, "dataset_data.json"))
	s := New(filepath.Join(outputDir, "nope"), outputDir, st)

	if _, err := s.Scan(context.Background()); err == nil {
		t.Error("expected error for missing image directory")
	}
}
