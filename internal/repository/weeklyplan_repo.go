package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WeeklyPlanRepository handles database operations for weekly meal plans
type WeeklyPlanRepository struct {
	db *gorm.DB
}

func NewWeeklyPlanRepository(db *gorm.DB) *WeeklyPlanRepository {
	return &WeeklyPlanRepository{db: db}
}

// ListForUser returns every filled slot of a user's plan with the recipe
// preloaded
func (r *WeeklyPlanRepository) ListForUser(userID uuid.UUID) ([]model.WeeklyPlanEntry, error) {
	var entries []model.WeeklyPlanEntry
	err := r.db.
		Preload("Recipe").
		Where("user_id = ?", userID).
		Order("day ASC, meal_type ASC").
		Find(&entries).Error
	return entries, err
}

// FindSlot returns the entry for one (day, meal) slot, if filled
func (r *WeeklyPlanRepository) FindSlot(userID uuid.UUID, day model.PlanDay, mealType model.MealType) (*model.WeeklyPlanEntry, error) {
	var entry model.WeeklyPlanEntry
	err := r.db.
		Where("user_id = ? AND day = ? AND meal_type = ?", userID, day, mealType).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertSlot assigns a recipe to a slot, replacing any previous assignment
func (r *WeeklyPlanRepository) UpsertSlot(entry *model.WeeklyPlanEntry) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "day"}, {Name: "meal_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"recipe_id", "updated_at"}),
	}).Create(entry).Error
}

// ClearSlot removes a slot assignment
func (r *WeeklyPlanRepository) ClearSlot(userID uuid.UUID, day model.PlanDay, mealType model.MealType) error {
	res := r.db.
		Where("user_id = ? AND day = ? AND meal_type = ?", userID, day, mealType).
		Delete(&model.WeeklyPlanEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
