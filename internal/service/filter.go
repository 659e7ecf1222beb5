package service

import (
	"strings"

	"github.com/noah-isme/gym-dashboard/internal/models"
)

// FilterCriteria is the current search text plus categorical filter selections.
type FilterCriteria struct {
	Search  string            `json:"search"`
	Filters map[string]string `json:"filters,omitempty"`
}

// IsUnset reports whether a filter value means "no filter".
func IsUnset(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "all", "ALL", "All":
		return true
	}
	return false
}

// Normalize trims the search text and drops filters holding an unset sentinel.
func (c FilterCriteria) Normalize() FilterCriteria {
	out := FilterCriteria{Search: strings.TrimSpace(c.Search)}
	for key, value := range c.Filters {
		if IsUnset(value) {
			continue
		}
		if out.Filters == nil {
			out.Filters = make(map[string]string, len(c.Filters))
		}
		out.Filters[key] = value
	}
	return out
}

// Equal compares two criteria after normalisation.
func (c FilterCriteria) Equal(other FilterCriteria) bool {
	a, b := c.Normalize(), other.Normalize()
	if a.Search != b.Search || len(a.Filters) != len(b.Filters) {
		return false
	}
	for key, value := range a.Filters {
		if b.Filters[key] != value {
			return false
		}
	}
	return true
}

// MatchRecord reports whether r passes every active categorical filter (exact,
// case-sensitive) and the free-text search (case-insensitive substring of any
// search field). Both dimensions must pass.
func MatchRecord(r models.Record, c FilterCriteria) bool {
	for key, want := range c.Filters {
		if IsUnset(want) {
			continue
		}
		if r.FilterValue(key) != want {
			return false
		}
	}

	needle := strings.ToLower(strings.TrimSpace(c.Search))
	if needle == "" {
		return true
	}
	for _, field := range r.SearchFields() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FilterRecords keeps the matching records in their original order.
func FilterRecords[T models.Record](records []T, c FilterCriteria) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if MatchRecord(r, c) {
			out = append(out, r)
		}
	}
	return out
}
