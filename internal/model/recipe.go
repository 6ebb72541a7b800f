package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is a catalog entry the client can schedule reminders and plan slots
// against. The catalog is local and seeded; search and ranking live elsewhere.
type Recipe struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"size:255;not null;index"`
	Image       string         `json:"image" gorm:"size:500;default:''"`
	Category    string         `json:"category" gorm:"size:100;index"`
	PrepMinutes int            `json:"prep_minutes" gorm:"default:0"`
	Calories    int            `json:"calories" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
