package models

import (
	"strconv"
	"time"
)

// ClassLevel grades a class by difficulty.
type ClassLevel string

const (
	LevelBeginner     ClassLevel = "BEGINNER"
	LevelIntermediate ClassLevel = "INTERMEDIATE"
	LevelAdvanced     ClassLevel = "ADVANCED"
	LevelAll          ClassLevel = "ALL_LEVELS"
)

// GymClass is a recurring class type offered by the gym.
type GymClass struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name" validate:"required"`
	Description     string     `json:"description"`
	Instructor      string     `json:"instructor" validate:"required"`
	Level           ClassLevel `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	Capacity        int        `json:"capacity" validate:"gt=0"`
	DurationMinutes int        `json:"duration_minutes" validate:"gt=0"`
}

func (c GymClass) RecordID() int64 { return c.ID }

func (c GymClass) SearchFields() []string {
	return []string{c.Name, c.Description, c.Instructor}
}

func (c GymClass) FilterValue(field string) string {
	if field == "level" {
		return string(c.Level)
	}
	return ""
}

func (c GymClass) EditableFields() map[string]any {
	return map[string]any{
		"name":             c.Name,
		"description":      c.Description,
		"instructor":       c.Instructor,
		"level":            string(c.Level),
		"capacity":         c.Capacity,
		"duration_minutes": c.DurationMinutes,
	}
}

// SessionStatus tracks a scheduled class occurrence.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// ClassSession is one scheduled occurrence of a GymClass.
type ClassSession struct {
	ID        int64         `json:"id"`
	ClassID   int64         `json:"class_id" validate:"required"`
	ClassName string        `json:"class_name,omitempty"`
	StartsAt  time.Time     `json:"starts_at" validate:"required"`
	EndsAt    time.Time     `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Room      string        `json:"room"`
	Notes     string        `json:"notes"`
	Status    SessionStatus `json:"status" validate:"required,oneof=SCHEDULED COMPLETED CANCELLED"`
}

func (s ClassSession) RecordID() int64 { return s.ID }

func (s ClassSession) SearchFields() []string {
	return []string{s.ClassName, s.Room, s.Notes}
}

func (s ClassSession) FilterValue(field string) string {
	switch field {
	case "status":
		return string(s.Status)
	case "class_id":
		return strconv.FormatInt(s.ClassID, 10)
	}
	return ""
}

func (s ClassSession) EditableFields() map[string]any {
	return map[string]any{
		"class_id":  s.ClassID,
		"starts_at": instant(s.StartsAt),
		"ends_at":   instant(s.EndsAt),
		"room":      s.Room,
		"notes":     s.Notes,
		"status":    string(s.Status),
	}
}

func (s ClassSession) Terminal() bool { return s.Status == SessionCompleted }

func (s ClassSession) Instants() map[string]time.Time {
	return map[string]time.Time{"starts_at": s.StartsAt, "ends_at": s.EndsAt}
}
