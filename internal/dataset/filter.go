package dataset

import (
	"fmt"
	"strings"
)

// Operator names a comparison applied by a Filter. The set matches the
// operators offered by the viewer page's filter UI.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "notEquals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
)

// Filter compares one attribute value against a fixed value. An item
// passes when the lower-cased attribute value (absent = empty string)
// satisfies the operator against the lower-cased filter value.
type Filter struct {
	Attribute string   `json:"attribute"`
	Operator  Operator `json:"operator"`
	Value     string   `json:"value"`
}

// ValidateFilters rejects unknown operators before evaluation so a bad
// request fails as a whole instead of silently matching nothing.
func ValidateFilters(filters []Filter) error {
	for _, f := range filters {
		switch f.Operator {
		case OpEquals, OpNotEquals, OpContains, OpStartsWith, OpEndsWith:
		default:
			return fmt.Errorf("unknown filter operator %q", f.Operator)
		}
	}
	return nil
}

// Match returns the items passing the search term and all filters,
// preserving input order. No search term and no filters returns the
// input unchanged. Search and filters combine with logical AND.
func Match(items []Item, search string, filters []Filter) []Item {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" && len(filters) == 0 {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		if !matchesFilters(item, filters) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// matchesSearch reports whether term (already lower-cased) is a
// substring of the item's id, any attribute name or value, or notes.
func matchesSearch(item Item, term string) bool {
	if strings.Contains(strings.ToLower(item.ID), term) {
		return true
	}
	for name, value := range item.AttributeValues {
		if strings.Contains(strings.ToLower(name), term) {
			return true
		}
		if strings.Contains(strings.ToLower(value), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(item.Notes), term)
}

func matchesFilters(item Item, filters []Filter) bool {
	for _, f := range filters {
		value := strings.ToLower(item.AttributeValues[f.Attribute])
		want := strings.ToLower(f.Value)
		var ok bool
		switch f.Operator {
		case OpEquals:
			ok = value == want
		case OpNotEquals:
			ok = value != want
		case OpContains:
			ok = strings.Contains(value, want)
		case OpStartsWith:
			ok = strings.HasPrefix(value, want)
		case OpEndsWith:
			ok = strings.HasSuffix(value, want)
		}
		if !ok {
			return false
		}
	}
	return true
}
