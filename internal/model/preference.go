package model

import (
	"time"

	"github.com/google/uuid"
)

// Preference is one dietary preference a user has picked (e.g. "Vegan",
// "Gluten-Free"). The set is small and replaced wholesale when the user saves
// the preferences screen, so there is no partial-update operation.
type Preference struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:uq_preferences_user_name,priority:1"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:uq_preferences_user_name,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
