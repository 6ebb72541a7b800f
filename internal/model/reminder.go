package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderStatus defines the delivery state of a meal reminder
type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

// IsTerminal reports whether the status can no longer change
func (s ReminderStatus) IsTerminal() bool {
	return s == ReminderStatusSent || s == ReminderStatusFailed
}

// Valid reports whether s is one of the known statuses
func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderStatusPending, ReminderStatusSent, ReminderStatusFailed:
		return true
	}
	return false
}

// MealType categorizes which meal a reminder is for
type MealType string

const (
	MealTypeBreakfast MealType = "Breakfast"
	MealTypeLunch     MealType = "Lunch"
	MealTypeDinner    MealType = "Dinner"
	MealTypeSnack     MealType = "Snack"
	MealTypeDessert   MealType = "Dessert"
	MealTypeOther     MealType = "Other"
)

// Valid reports whether m is one of the known meal types
func (m MealType) Valid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack, MealTypeDessert, MealTypeOther:
		return true
	}
	return false
}

// Reminder represents a scheduled meal notification.
// Status starts at pending and transitions exactly once to sent or failed;
// the dispatcher is the only writer of the status field. ClaimedAt is a
// short-lived lease so that two dispatcher instances never deliver the same
// reminder, and Attempts/NextAttemptAt drive the bounded retry policy for
// transport failures. The partial unique index on pending rows is declared in
// the tags as well as the SQL migration, so the duplicate-slot conflict holds
// under the AutoMigrate fallback too.
type Reminder struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:uq_reminders_pending_slot,priority:1,where:status = 'pending'"`
	RecipeID      *uuid.UUID     `json:"recipe_id,omitempty" gorm:"type:uuid"` // NULL for legacy records
	RecipeName    string         `json:"recipe_name" gorm:"size:255;not null;uniqueIndex:uq_reminders_pending_slot,priority:2"`
	RecipeImage   string         `json:"recipe_image" gorm:"size:500;default:''"`
	MealType      MealType       `json:"meal_type" gorm:"type:varchar(20)"` // empty for legacy records
	ScheduledTime time.Time      `json:"scheduled_time" gorm:"type:timestamptz;not null;index;uniqueIndex:uq_reminders_pending_slot,priority:3"`
	Status        ReminderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PushToken     *string        `json:"push_token,omitempty" gorm:"size:255"`
	Attempts      int            `json:"attempts" gorm:"not null;default:0"`
	NextAttemptAt time.Time      `json:"-" gorm:"type:timestamptz;not null;index"`
	ClaimedAt     *time.Time     `json:"-" gorm:"type:timestamptz"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasPushToken reports whether the reminder carries a usable delivery address
func (r *Reminder) HasPushToken() bool {
	return r.PushToken != nil && *r.PushToken != ""
}

// IsDue reports whether the reminder should be dispatched at the given time
func (r *Reminder) IsDue(asOf time.Time) bool {
	return r.Status == ReminderStatusPending &&
		!r.ScheduledTime.After(asOf) &&
		!r.NextAttemptAt.After(asOf)
}
