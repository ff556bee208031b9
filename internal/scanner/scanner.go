// Package scanner finds source images, copies them into the output
// directory, and registers them as dataset items.
package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"dataset-builder/internal/dataset"
	"dataset-builder/internal/store"
)

// imagePattern matches the supported image extensions. Matching is
// done against the lower-cased filename.
const imagePattern = "*.{jpg,jpeg,png,gif,webp}"

// Scanner walks one image directory and maintains the copied images
// under <output>/images. Item ids derive from the filename stem, so a
// rescan never duplicates an item.
type Scanner struct {
	imageDir  string
	outputDir string
	store     *store.Store
	logger    *slog.Logger
}

// New creates a Scanner feeding the given store.
func New(imageDir, outputDir string, st *store.Store) *Scanner {
	return &Scanner{
		imageDir:  imageDir,
		outputDir: outputDir,
		store:     st,
		logger:    slog.Default(),
	}
}

// ImagesDir returns the directory scanned images are copied into.
func (s *Scanner) ImagesDir() string {
	return filepath.Join(s.outputDir, "images")
}

// Scan copies any new images into the output directory, upserts items
// for them, stamps last_updated, and saves the dataset. It returns the
// number of image files seen in the source directory.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	runID := uuid.New().String()
	logger := s.logger.With("scan_id", runID)

	if err := os.MkdirAll(s.ImagesDir(), 0o755); err != nil {
		return 0, fmt.Errorf("create images directory: %w", err)
	}

	entries, err := os.ReadDir(s.imageDir)
	if err != nil {
		return 0, fmt.Errorf("read image directory %s: %w", s.imageDir, err)
	}

	logger.InfoContext(ctx, "scanning for images", "dir", s.imageDir)

	seen := 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return seen, ctx.Err()
		default:
		}

		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ok, err := doublestar.Match(imagePattern, strings.ToLower(name))
		if err != nil {
			return seen, fmt.Errorf("match image pattern: %w", err)
		}
		if !ok {
			continue
		}
		seen++

		dest := filepath.Join(s.ImagesDir(), name)
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			if err := copyFile(filepath.Join(s.imageDir, name), dest); err != nil {
				logger.WarnContext(ctx, "could not copy image", "file", name, "error", err)
				continue
			}
			logger.InfoContext(ctx, "copied image", "file", name)
		}

		id := itemID(name)
		if !s.store.HasItem(id) {
			s.store.UpsertItem(dataset.Item{
				ID:    id,
				Image: "images/" + name,
				AttributeValues: map[string]string{
					dataset.IDAttributeName: id,
				},
			})
			logger.InfoContext(ctx, "added item", "id", id)
		}
	}

	s.store.Touch()
	if err := s.store.Save(); err != nil {
		return seen, err
	}

	logger.InfoContext(ctx, "scan complete", "images", seen, "items", s.store.Len())
	return seen, nil
}

// itemID derives an item id from the image filename: the filename
// without its extension.
func itemID(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
