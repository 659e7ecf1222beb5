package models

// MembershipPlan is a purchasable membership tier.
type MembershipPlan struct {
	ID           int64  `json:"id"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents" validate:"gte=0"`
	Currency     string `json:"currency" validate:"required,len=3"`
	DurationDays int    `json:"duration_days" validate:"gt=0"`
	Active       bool   `json:"active"`
}

func (p MembershipPlan) RecordID() int64 { return p.ID }

func (p MembershipPlan) SearchFields() []string {
	return []string{p.Name, p.Description}
}

// FilterValue exposes the active flag as "active" / "inactive" under "status".
func (p MembershipPlan) FilterValue(field string) string {
	if field != "status" {
		return ""
	}
	if p.Active {
		return "active"
	}
	return "inactive"
}

func (p MembershipPlan) EditableFields() map[string]any {
	return map[string]any{
		"name":          p.Name,
		"description":   p.Description,
		"price_cents":   p.PriceCents,
		"currency":      p.Currency,
		"duration_days": p.DurationDays,
		"active":        p.Active,
	}
}
