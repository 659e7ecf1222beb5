package models

import "time"

// EventStatus tracks an event's lifecycle.
type EventStatus string

const (
	EventScheduled EventStatus = "SCHEDULED"
	EventOngoing   EventStatus = "ONGOING"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
)

// Event is a one-off gym event members can join.
type Event struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title" validate:"required"`
	Description    string      `json:"description"`
	Location       string      `json:"location" validate:"required"`
	Status         EventStatus `json:"status" validate:"required,oneof=SCHEDULED ONGOING COMPLETED CANCELLED"`
	StartsAt       time.Time   `json:"starts_at" validate:"required"`
	EndsAt         time.Time   `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity       int         `json:"capacity" validate:"gte=0"`
	CreatedBy      int64       `json:"created_by,omitempty"`
	ParticipantIDs []int64     `json:"participant_ids,omitempty"`
}

func (e Event) RecordID() int64 { return e.ID }

// SearchFields covers title, description and location.
func (e Event) SearchFields() []string {
	return []string{e.Title, e.Description, e.Location}
}

func (e Event) FilterValue(field string) string {
	if field == "status" {
		return string(e.Status)
	}
	return ""
}

func (e Event) EditableFields() map[string]any {
	return map[string]any{
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"status":      string(e.Status),
		"starts_at":   instant(e.StartsAt),
		"ends_at":     instant(e.EndsAt),
		"capacity":    e.Capacity,
	}
}

// Terminal is true once the event has completed.
func (e Event) Terminal() bool { return e.Status == EventCompleted }

func (e Event) Instants() map[string]time.Time {
	return map[string]time.Time{"starts_at": e.StartsAt, "ends_at": e.EndsAt}
}

func (e Event) UserRefs() []int64 {
	refs := make([]int64, 0, len(e.ParticipantIDs)+1)
	if e.CreatedBy != 0 {
		refs = append(refs, e.CreatedBy)
	}
	return append(refs, e.ParticipantIDs...)
}
