package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dataset-builder/internal/dataset"
)

func TestOpen_MissingFileStartsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "dataset_data.json"))

	snap := s.Snapshot()
	if len(snap.Items) != 0 {
		t.Errorf("expected empty dataset, got %d items", len(snap.Items))
	}
	if len(snap.Attributes) != 1 || snap.Attributes[0].Name != dataset.IDAttributeName {
		t.Errorf("expected single ID attribute, got %+v", snap.Attributes)
	}
	if !snap.Attributes[0].Readonly {
		t.Error("ID attribute must be readonly")
	}
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path)
	if s.Len() != 0 {
		t.Errorf("expected empty dataset after parse failure, got %d items", s.Len())
	}
}

func TestOpen_NormalizesStoredData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset_data.json")
	raw := `{
		"items": [{"id": "img1", "image": "images/img1.jpg", "notes": ""}],
		"attributes": [{"name": "ID", "description": "stale"}, {"name": "species"}],
		"last_updated": ""
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path)
	snap := s.Snapshot()

	if snap.Attributes[0].Name != dataset.IDAttributeName || !snap.Attributes[0].Readonly {
		t.Errorf("attributes[0] = %+v, want canonical ID", snap.Attributes[0])
	}
	if got := snap.Items[0].AttributeValues[dataset.IDAttributeName]; got != "img1" {
		t.Errorf("attribute_values[ID] = %q, want img1", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "dataset_data.json")
	s := Open(path)
	s.UpsertItem(dataset.Item{
		ID:              "img1",
		Image:           "images/img1.jpg",
		AttributeValues: map[string]string{"species": "cat"},
		Notes:           "outdoor shot",
	})
	s.Touch()

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := Open(path)
	want := s.Snapshot()
	got := reloaded.Snapshot()
	if !reflect.DeepEqual(want, got) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", want, got)
	}
}

func TestSave_FailureSurfaced(t *testing.T) {
	dir := t.TempDir()
	// A directory where the dataset file should be makes the rename fail.
	path := filepath.Join(dir, "dataset_data.json")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}

	s := Open(filepath.Join(dir, "other.json"))
	s.path = path
	if err := s.Save(); err == nil {
		t.Error("expected Save() to report the write failure")
	}
}

func TestUpsertItem(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "d.json"))
	s.UpsertItem(dataset.Item{ID: "a", Notes: "first"})
	s.UpsertItem(dataset.Item{ID: "b"})
	s.UpsertItem(dataset.Item{ID: "a", Notes: "second"})

	snap := s.Snapshot()
	if len(snap.Items) != 2 {
		t.Fatalf("expected 2 items after duplicate upsert, got %d", len(snap.Items))
	}
	if snap.Items[0].ID != "a" {
		t.Errorf("upsert moved item: items[0].ID = %q, want a", snap.Items[0].ID)
	}
	if snap.Items[0].Notes != "second" {
		t.Errorf("second upsert's values should win, notes = %q", snap.Items[0].Notes)
	}
	if got := snap.Items[0].AttributeValues[dataset.IDAttributeName]; got != "a" {
		t.Errorf("attribute_values[ID] = %q, want a", got)
	}
}

func TestRemoveItem(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "d.json"))
	s.UpsertItem(dataset.Item{ID: "a", Image: "images/a.jpg"})
	s.UpsertItem(dataset.Item{ID: "b", Image: "images/b.jpg"})

	img, err := s.RemoveItem("a")
	if err != nil {
		t.Fatalf("RemoveItem(a) error = %v", err)
	}
	if img != "images/a.jpg" {
		t.Errorf("RemoveItem returned image %q, want images/a.jpg", img)
	}
	if s.Len() != 1 || !s.HasItem("b") {
		t.Error("dataset should contain only item b after removal")
	}
}

func TestRemoveItem_AbsentID(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "d.json"))
	s.UpsertItem(dataset.Item{ID: "a"})

	if _, err := s.RemoveItem("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveItem(missing) error = %v, want ErrNotFound", err)
	}
	if s.Len() != 1 {
		t.Error("failed removal must leave the dataset unmodified")
	}
}

func TestReplace_Normalizes(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "d.json"))
	s.Replace(&dataset.Dataset{
		Items:      []dataset.Item{{ID: "x", AttributeValues: map[string]string{"ID": "forged"}}},
		Attributes: []dataset.Attribute{{Name: "species"}},
	})

	snap := s.Snapshot()
	if snap.Attributes[0].Name != dataset.IDAttributeName {
		t.Error("Replace must re-insert the ID attribute at position 0")
	}
	if got := snap.Items[0].AttributeValues[dataset.IDAttributeName]; got != "x" {
		t.Errorf("client-supplied ID value survived Replace: %q", got)
	}
}
