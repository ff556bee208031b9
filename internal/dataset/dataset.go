package dataset

import "time"

// IDAttributeName is the reserved attribute that mirrors each item's id.
// It is always first in Dataset.Attributes and always readonly.
const IDAttributeName = "ID"

// Attribute is a dataset-wide field definition applied to every item.
type Attribute struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Readonly    bool   `json:"readonly,omitempty"`
}

// Item is one annotated image record.
type Item struct {
	ID              string            `json:"id"`
	Image           string            `json:"image"`
	AttributeValues map[string]string `json:"attribute_values"`
	Notes           string            `json:"notes"`
}

// Dataset is the full persisted document: items in scan/add order,
// shared attribute definitions, and the last modification timestamp.
type Dataset struct {
	Items       []Item      `json:"items"`
	Attributes  []Attribute `json:"attributes"`
	LastUpdated string      `json:"last_updated"`
}

// New returns an empty, already-normalized dataset.
func New() *Dataset {
	d := &Dataset{}
	d.Normalize()
	return d
}

// Normalize repairs a dataset into canonical form: the ID attribute is
// re-inserted at position 0 regardless of what was stored, every item
// gets an attribute_values map, and attribute_values["ID"] is forced to
// the item's id. Values supplied by clients for ID are never trusted.
// Normalize is idempotent.
func (d *Dataset) Normalize() {
	attrs := make([]Attribute, 0, len(d.Attributes)+1)
	attrs = append(attrs, Attribute{Name: IDAttributeName, Readonly: true})
	for _, attr := range d.Attributes {
		if attr.Name == IDAttributeName {
			continue
		}
		attrs = append(attrs, attr)
	}
	d.Attributes = attrs

	if d.Items == nil {
		d.Items = []Item{}
	}
	for i := range d.Items {
		if d.Items[i].AttributeValues == nil {
			d.Items[i].AttributeValues = make(map[string]string)
		}
		d.Items[i].AttributeValues[IDAttributeName] = d.Items[i].ID
	}
}

// Touch sets LastUpdated to the current time in RFC 3339 form.
func (d *Dataset) Touch() {
	d.LastUpdated = time.Now().Format(time.RFC3339)
}

// FindItem returns the index of the item with the given id, or -1.
func (d *Dataset) FindItem(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to read after the original mutates.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Items:       make([]Item, len(d.Items)),
		Attributes:  append([]Attribute(nil), d.Attributes...),
		LastUpdated: d.LastUpdated,
	}
	for i, item := range d.Items {
		values := make(map[string]string, len(item.AttributeValues))
		for k, v := range item.AttributeValues {
			values[k] = v
		}
		out.Items[i] = Item{
			ID:              item.ID,
			Image:           item.Image,
			AttributeValues: values,
			Notes:           item.Notes,
		}
	}
	return out
}
