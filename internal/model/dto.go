package model

import "github.com/google/uuid"

// ========== Reminder DTOs ==========

// CreateAlarmRequest is the body of POST /alarm. The field names mirror the
// mobile client: scheduleTime arrives as an RFC 3339 string and is parsed and
// validated in the service layer so a malformed value surfaces as a 400.
type CreateAlarmRequest struct {
	RecipeID     *uuid.UUID `json:"recipeId,omitempty"`
	RecipeName   string     `json:"recipeName" binding:"required,max=255"`
	RecipeImage  string     `json:"recipeImage"`
	MealType     string     `json:"mealType" binding:"required"`
	ScheduleTime string     `json:"scheduleTime" binding:"required"`
	PushToken    *string    `json:"pushToken,omitempty"`
}

// ReminderListQuery carries the optional filters of GET /notifications
type ReminderListQuery struct {
	MealType string `form:"mealType"`
	Status   string `form:"status"`
}

type ReminderStatusResponse struct {
	ID     uuid.UUID      `json:"id"`
	Status ReminderStatus `json:"status"`
}

type DeletedResponse struct {
	Message string `json:"message"`
}

// ========== Weekly plan DTOs ==========

type AssignPlanSlotRequest struct {
	RecipeID uuid.UUID `json:"recipeId" binding:"required"`
}

// ========== Preference DTOs ==========

// SetPreferencesRequest replaces the caller's full preference set
type SetPreferencesRequest struct {
	Preferences []string `json:"preferences" binding:"required,min=1,dive,required,max=100"`
}

// ========== Common DTOs ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
