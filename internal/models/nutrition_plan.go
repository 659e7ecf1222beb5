package models

// NutritionGoal is the target a nutrition plan is designed for.
type NutritionGoal string

const (
	GoalWeightLoss  NutritionGoal = "WEIGHT_LOSS"
	GoalMuscleGain  NutritionGoal = "MUSCLE_GAIN"
	GoalMaintenance NutritionGoal = "MAINTENANCE"
	GoalEndurance   NutritionGoal = "ENDURANCE"
)

// NutritionPlan is a diet plan optionally assigned to a member.
type NutritionPlan struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name" validate:"required"`
	Description   string        `json:"description"`
	Goal          NutritionGoal `json:"goal" validate:"required,oneof=WEIGHT_LOSS MUSCLE_GAIN MAINTENANCE ENDURANCE"`
	DailyCalories int           `json:"daily_calories" validate:"gt=0"`
	UserID        int64         `json:"user_id,omitempty"`
	CreatedBy     int64         `json:"created_by,omitempty"`
}

func (p NutritionPlan) RecordID() int64 { return p.ID }

func (p NutritionPlan) SearchFields() []string {
	return []string{p.Name, p.Description}
}

func (p NutritionPlan) FilterValue(field string) string {
	if field == "goal" {
		return string(p.Goal)
	}
	return ""
}

func (p NutritionPlan) EditableFields() map[string]any {
	return map[string]any{
		"name":           p.Name,
		"description":    p.Description,
		"goal":           string(p.Goal),
		"daily_calories": p.DailyCalories,
		"user_id":        p.UserID,
	}
}

func (p NutritionPlan) UserRefs() []int64 {
	var refs []int64
	if p.UserID != 0 {
		refs = append(refs, p.UserID)
	}
	if p.CreatedBy != 0 {
		refs = append(refs, p.CreatedBy)
	}
	return refs
}
