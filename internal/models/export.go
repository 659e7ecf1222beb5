package models

import "time"

// ExportLink points at a stored export file through a signed download token.
type ExportLink struct {
	Token     string    `json:"token"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}
