package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"gorm.io/gorm"
)

// ReminderRepository handles database operations for Reminder
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a new reminder. A partial unique index on
// (user_id, recipe_name, scheduled_time) WHERE status = 'pending' rejects a
// second pending reminder for the same slot; that surfaces as ErrConflict.
func (r *ReminderRepository) Create(reminder *model.Reminder) error {
	err := r.db.Create(reminder).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrConflict
	}
	return err
}

// FindByID finds a user's reminder by ID
func (r *ReminderRepository) FindByID(userID, id uuid.UUID) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// List returns a user's reminders, newest schedule first, with optional
// meal-type and status filters
func (r *ReminderRepository) List(userID uuid.UUID, mealType model.MealType, status model.ReminderStatus) ([]model.Reminder, error) {
	q := r.db.Where("user_id = ?", userID)
	if mealType != "" {
		q = q.Where("meal_type = ?", mealType)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reminders []model.Reminder
	err := q.Order("scheduled_time DESC").Find(&reminders).Error
	return reminders, err
}

// ListDue returns all pending reminders whose scheduled time and retry window
// have passed. Snapshot read only; the dispatcher claims through ClaimDue.
func (r *ReminderRepository) ListDue(asOf time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.
		Where("status = ? AND scheduled_time <= ? AND next_attempt_at <= ?",
			model.ReminderStatusPending, asOf, asOf).
		Order("scheduled_time ASC").
		Find(&reminders).Error
	return reminders, err
}

// ClaimDue atomically claims up to limit due pending reminders by stamping
// claimed_at. SKIP LOCKED plus the lease window keeps concurrent dispatcher
// instances from delivering the same reminder twice; a crashed instance's
// claims expire after the lease and become claimable again.
func (r *ReminderRepository) ClaimDue(asOf time.Time, lease time.Duration, limit int) ([]model.Reminder, error) {
	staleBefore := asOf.Add(-lease)

	var claimed []model.Reminder
	err := r.db.Raw(`
		UPDATE reminders
		SET claimed_at = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM reminders
			WHERE status = ?
			  AND scheduled_time <= ?
			  AND next_attempt_at <= ?
			  AND (claimed_at IS NULL OR claimed_at < ?)
			ORDER BY scheduled_time ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		asOf, asOf, model.ReminderStatusPending, asOf, asOf, staleBefore, limit,
	).Scan(&claimed).Error
	return claimed, err
}

// MarkResult transitions pending -> sent|failed. A concurrently deleted
// record returns ErrNotFound and a record that already left pending returns
// ErrConflict; callers treat both as benign races.
func (r *ReminderRepository) MarkResult(id uuid.UUID, status model.ReminderStatus) error {
	if !status.IsTerminal() {
		return model.ErrValidation
	}

	res := r.db.Model(&model.Reminder{}).
		Where("id = ? AND status = ?", id, model.ReminderStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"claimed_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No transition happened: deleted record vs. already-terminal record.
	var count int64
	if err := r.db.Model(&model.Reminder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return model.ErrNotFound
	}
	return model.ErrConflict
}

// Reschedule releases the dispatch lease and records a retryable failure so
// the reminder becomes due again at nextAttemptAt
func (r *ReminderRepository) Reschedule(id uuid.UUID, attempts int, nextAttemptAt time.Time) error {
	res := r.db.Model(&model.Reminder{}).
		Where("id = ? AND status = ?", id, model.ReminderStatusPending).
		Updates(map[string]interface{}{
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"claimed_at":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a user's reminder unconditionally. Delete always wins
// against an in-flight dispatch; the dispatcher's subsequent MarkResult sees
// ErrNotFound and moves on.
func (r *ReminderRepository) Delete(userID, id uuid.UUID) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Reminder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeletePendingForRecipe removes a user's still-pending reminders for a
// recipe. Used when a weekly-plan slot's recipe is replaced.
func (r *ReminderRepository) DeletePendingForRecipe(userID, recipeID uuid.UUID) (int64, error) {
	res := r.db.
		Where("user_id = ? AND recipe_id = ? AND status = ?",
			userID, recipeID, model.ReminderStatusPending).
		Delete(&model.Reminder{})
	return res.RowsAffected, res.Error
}
