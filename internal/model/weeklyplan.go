package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanDay is a day-of-week slot key in the weekly meal plan
type PlanDay string

const (
	PlanDayMonday    PlanDay = "Monday"
	PlanDayTuesday   PlanDay = "Tuesday"
	PlanDayWednesday PlanDay = "Wednesday"
	PlanDayThursday  PlanDay = "Thursday"
	PlanDayFriday    PlanDay = "Friday"
	PlanDaySaturday  PlanDay = "Saturday"
	PlanDaySunday    PlanDay = "Sunday"
)

// Valid reports whether d is one of the seven plan days
func (d PlanDay) Valid() bool {
	switch d {
	case PlanDayMonday, PlanDayTuesday, PlanDayWednesday, PlanDayThursday,
		PlanDayFriday, PlanDaySaturday, PlanDaySunday:
		return true
	}
	return false
}

// WeeklyPlanEntry assigns a recipe to one (day, meal) slot of a user's week.
// Replacing the recipe in a slot supersedes any pending reminders that were
// created for the old recipe in that slot.
type WeeklyPlanEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_plan_slot"`
	Day       PlanDay   `json:"day" gorm:"type:varchar(10);not null;uniqueIndex:idx_plan_slot"`
	MealType  MealType  `json:"meal_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_plan_slot"`
	RecipeID  uuid.UUID `json:"recipe_id" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Recipe Recipe `json:"recipe" gorm:"foreignKey:RecipeID"`
}
