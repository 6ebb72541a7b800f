package repository

import (
	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"gorm.io/gorm"
)

// PreferenceRepository handles database operations for dietary preferences
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListForUser returns the user's preferences
func (r *PreferenceRepository) ListForUser(userID uuid.UUID) ([]model.Preference, error) {
	var preferences []model.Preference
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&preferences).Error
	return preferences, err
}

// Replace swaps the user's preference set for the given names in one
// transaction, so a failed save never leaves a half-written set
func (r *PreferenceRepository) Replace(userID uuid.UUID, names []string) ([]model.Preference, error) {
	preferences := make([]model.Preference, 0, len(names))
	for _, name := range names {
		preferences = append(preferences, model.Preference{UserID: userID, Name: name})
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Preference{}).Error; err != nil {
			return err
		}
		if len(preferences) == 0 {
			return nil
		}
		return tx.Create(&preferences).Error
	})
	if err != nil {
		return nil, err
	}
	return preferences, nil
}

// Delete removes one preference owned by the user
func (r *PreferenceRepository) Delete(userID, id uuid.UUID) error {
	result := r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&model.Preference{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
