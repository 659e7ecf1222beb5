package dto

import "github.com/noah-isme/gym-dashboard/internal/models"

// MountScreenRequest selects the collection a new screen manages.
type MountScreenRequest struct {
	Resource models.Resource `json:"resource" binding:"required"`
}

// CriteriaRequest carries search text and filter selections. "all" or an
// empty value clears a filter.
type CriteriaRequest struct {
	Search  string            `json:"search"`
	Filters map[string]string `json:"filters"`
}

// PageRequest moves a screen to another page.
type PageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// OpenModalRequest opens the screen dialog. RecordID is ignored for create.
type OpenModalRequest struct {
	Mode     string `json:"mode" binding:"required,oneof=create edit delete-confirm"`
	RecordID int64  `json:"record_id"`
}

// DraftRequest patches the open dialog's draft by JSON field name. Keys
// ending in "_local" hold gym-local times like 2024-05-01T18:00.
type DraftRequest struct {
	Draft map[string]any `json:"draft" binding:"required"`
}

// AuditLogQuery mirrors the audit trail filters.
type AuditLogQuery struct {
	Resource string `form:"resource"`
	ActorID  int64  `form:"actor_id"`
	Limit    int    `form:"limit"`
}
