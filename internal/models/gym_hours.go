package models

import "time"

// ClockLayout is the wall-clock format of opening hours.
const ClockLayout = "15:04"

// GymHours are the operating hours for one weekday.
type GymHours struct {
	ID        int64  `json:"id"`
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	OpensAt   string `json:"opens_at"`
	ClosesAt  string `json:"closes_at"`
	Closed    bool   `json:"closed"`
}

func (h GymHours) RecordID() int64 { return h.ID }

func (h GymHours) SearchFields() []string { return []string{h.DayOfWeek} }

func (h GymHours) FilterValue(field string) string {
	if field == "day_of_week" {
		return h.DayOfWeek
	}
	return ""
}

func (h GymHours) EditableFields() map[string]any {
	return map[string]any{
		"day_of_week": h.DayOfWeek,
		"opens_at":    h.OpensAt,
		"closes_at":   h.ClosesAt,
		"closed":      h.Closed,
	}
}

// OpenWindow parses the opening and closing clock times.
func (h GymHours) OpenWindow() (time.Time, time.Time, error) {
	opens, err := time.Parse(ClockLayout, h.OpensAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	closes, err := time.Parse(ClockLayout, h.ClosesAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return opens, closes, nil
}
