package models

import "time"

// AuditAction constants represent dashboard mutations to be logged.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditLog represents an audit trail record of a committed dashboard mutation.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    int64     `db:"actor_id" json:"actor_id"`
	GymID      int64     `db:"gym_id" json:"gym_id"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID int64     `db:"resource_id" json:"resource_id"`
	Changes    []byte    `db:"changes" json:"changes,omitempty"`
	ScreenID   string    `db:"screen_id" json:"screen_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActorID  int64
	Resource string
	Limit    int
}
