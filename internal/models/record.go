package models

import "time"

// Resource names a record collection on the gym REST API. The value doubles as the URL segment.
type Resource string

const (
	ResourceEvents          Resource = "events"
	ResourceMembershipPlans Resource = "membership-plans"
	ResourceNutritionPlans  Resource = "nutrition-plans"
	ResourceClasses         Resource = "classes"
	ResourceClassSessions   Resource = "class-sessions"
	ResourceGymHours        Resource = "gym-hours"
	ResourceUsers           Resource = "users"
)

// Record is the contract every listable entity satisfies.
type Record interface {
	RecordID() int64
	// SearchFields returns the values free-text search is matched against.
	SearchFields() []string
	// FilterValue returns the categorical value for a named filter, "" when unknown.
	FilterValue(field string) string
	// EditableFields maps JSON field names to the values an edit form can change.
	EditableFields() map[string]any
}

// Terminable records can reach a state after which edits are refused.
type Terminable interface {
	Terminal() bool
}

// Temporal records expose their instants so views can render them in the gym's zone.
type Temporal interface {
	Instants() map[string]time.Time
}

// UserReferencing records point at users whose display names the view resolves.
type UserReferencing interface {
	UserRefs() []int64
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// IsTerminal reports whether r is in a terminal state.
func IsTerminal(r any) bool {
	t, ok := r.(Terminable)
	return ok && t.Terminal()
}

func instant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
