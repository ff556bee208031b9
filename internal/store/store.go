// Package store owns the canonical in-memory dataset and its JSON
// persistence. It is the only component that reads or writes the
// dataset file; image files and page generation belong to callers.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"dataset-builder/internal/dataset"
)

// ErrNotFound is returned when an item id is not in the dataset.
var ErrNotFound = errors.New("item not found")

// Store guards the dataset with a mutex. Request handlers and the
// restart monitor run on separate goroutines, so every access goes
// through a method that takes the lock.
type Store struct {
	mu   sync.RWMutex
	path string
	data *dataset.Dataset
}

// Open loads the dataset file at path, normalizing it. A missing file
// starts an empty dataset; an unparseable file is logged as a warning
// and replaced with an empty dataset rather than failing the process.
func Open(path string) *Store {
	s := &Store{path: path, data: dataset.New()}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not read dataset file, starting empty", "path", path, "error", err)
		}
		return s
	}

	var d dataset.Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		slog.Warn("could not parse dataset file, starting empty", "path", path, "error", err)
		return s
	}
	d.Normalize()
	s.data = &d
	return s
}

// Path returns the dataset file location.
func (s *Store) Path() string {
	return s.path
}

// Save serializes the dataset to the store's path via a temp file and
// rename, creating parent directories if absent. Write failures are
// returned to the caller; swallowing them would risk losing edits.
func (s *Store) Save() error {
	s.mu.RLock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write dataset file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace dataset file: %w", err)
	}
	return nil
}

// Replace substitutes the whole dataset, re-applying normalization so
// a client payload can never unseat the ID invariants.
func (s *Store) Replace(d *dataset.Dataset) {
	d.Normalize()
	s.mu.Lock()
	s.data = d
	s.mu.Unlock()
}

// UpsertItem inserts the item if its id is unseen, otherwise updates
// it in place preserving its original position.
func (s *Store) UpsertItem(item dataset.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.AttributeValues == nil {
		item.AttributeValues = make(map[string]string)
	}
	item.AttributeValues[dataset.IDAttributeName] = item.ID

	if i := s.data.FindItem(item.ID); i >= 0 {
		s.data.Items[i] = item
		return
	}
	s.data.Items = append(s.data.Items, item)
}

// RemoveItem deletes the item with the given id and returns the
// relative image path it referenced, so the caller can delete the
// file. Returns ErrNotFound when the id is unknown; the dataset is
// left unmodified in that case.
func (s *Store) RemoveItem(id string) (imagePath string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.data.FindItem(id)
	if i < 0 {
		return "", ErrNotFound
	}
	imagePath = s.data.Items[i].Image
	s.data.Items = append(s.data.Items[:i], s.data.Items[i+1:]...)
	return imagePath, nil
}

// Touch stamps the dataset's last_updated field.
func (s *Store) Touch() {
	s.mu.Lock()
	s.data.Touch()
	s.mu.Unlock()
}

// Snapshot returns a deep copy safe to read while the store mutates.
func (s *Store) Snapshot() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Len returns the current item count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Items)
}

// HasItem reports whether an item with the given id exists.
func (s *Store) HasItem(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.FindItem(id) >= 0
}
