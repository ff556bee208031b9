package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"dataset-builder/internal/dataset"
)

// CSVOptions control the shape of a CSV export.
type CSVOptions struct {
	// IncludeImagePaths adds an image_path column after the id.
	IncludeImagePaths bool
}

// ToCSV writes the dataset as CSV to outPath. Columns are the item id,
// optionally the image path, one column per shared attribute except
// the id attribute, and the notes. Items missing a value for an
// attribute get an empty cell.
func ToCSV(outPath string, d *dataset.Dataset, opts CSVOptions) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	var attrNames []string
	for _, attr := range d.Attributes {
		if attr.Name == dataset.IDAttributeName {
			continue
		}
		attrNames = append(attrNames, attr.Name)
	}

	header := []string{"id"}
	if opts.IncludeImagePaths {
		header = append(header, "image_path")
	}
	header = append(header, attrNames...)
	header = append(header, "notes")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range d.Items {
		row := []string{item.ID}
		if opts.IncludeImagePaths {
			row = append(row, item.Image)
		}
		for _, name := range attrNames {
			row = append(row, item.AttributeValues[name])
		}
		row = append(row, item.Notes)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row for %q: %w", item.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Sync()
}
