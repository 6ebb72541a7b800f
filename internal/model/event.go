package model

import (
	"time"

	"github.com/google/uuid"
)

// WSEvent is the envelope for every message pushed over the status feed
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	WSEventReminderStatus = "reminder_status"
	WSEventPlanUpdated    = "plan_updated"
)

// ReminderStatusEvent notifies a client that one of its reminders reached a
// terminal status. Clients that stay on polling simply never open the socket.
type ReminderStatusEvent struct {
	ReminderID uuid.UUID      `json:"reminder_id"`
	UserID     uuid.UUID      `json:"user_id"`
	RecipeName string         `json:"recipe_name"`
	Status     ReminderStatus `json:"status"`
	At         time.Time      `json:"at"`
}

// PlanUpdatedEvent notifies a client that a weekly-plan slot changed
type PlanUpdatedEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Day      PlanDay   `json:"day"`
	MealType MealType  `json:"meal_type"`
	RecipeID uuid.UUID `json:"recipe_id"`
}
