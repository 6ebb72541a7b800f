package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
)

// reminderRepo is the slice of the reminder repository the service needs
type reminderRepo interface {
	Create(reminder *model.Reminder) error
	FindByID(userID, id uuid.UUID) (*model.Reminder, error)
	List(userID uuid.UUID, mealType model.MealType, status model.ReminderStatus) ([]model.Reminder, error)
	Delete(userID, id uuid.UUID) error
}

// statusCache is the TTL key-value store for status lookups, keyed per owner
type statusCache interface {
	Get(ctx context.Context, userID, id uuid.UUID) (model.ReminderStatus, error)
	Set(ctx context.Context, userID, id uuid.UUID, status model.ReminderStatus) error
	Invalidate(ctx context.Context, userID, id uuid.UUID) error
}

// ReminderService owns the client-facing reminder lifecycle: validated
// creation, filtered listing, cached status reads and idempotent cancel.
// Status transitions themselves belong to the dispatcher.
type ReminderService struct {
	repo  reminderRepo
	cache statusCache
	now   func() time.Time
}

func NewReminderService(repo reminderRepo, cache statusCache) *ReminderService {
	return &ReminderService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Create validates and persists a new reminder. The schedule time must parse
// as RFC 3339 and lie strictly in the future; the meal type must be one of
// the known values. A duplicate pending reminder for the same slot is a
// conflict.
func (s *ReminderService) Create(ctx context.Context, userID uuid.UUID, req model.CreateAlarmRequest) (*model.Reminder, error) {
	scheduledTime, err := time.Parse(time.RFC3339, req.ScheduleTime)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduleTime must be an RFC 3339 timestamp", model.ErrValidation)
	}
	scheduledTime = scheduledTime.UTC()

	if !scheduledTime.After(s.now()) {
		return nil, fmt.Errorf("%w: scheduleTime must be in the future", model.ErrValidation)
	}

	mealType := model.MealType(req.MealType)
	if !mealType.Valid() {
		return nil, fmt.Errorf("%w: unknown mealType %q", model.ErrValidation, req.MealType)
	}

	reminder := &model.Reminder{
		UserID:        userID,
		RecipeID:      req.RecipeID,
		RecipeName:    req.RecipeName,
		RecipeImage:   req.RecipeImage,
		MealType:      mealType,
		ScheduledTime: scheduledTime,
		Status:        model.ReminderStatusPending,
		PushToken:     req.PushToken,
		NextAttemptAt: scheduledTime,
	}

	if err := s.repo.Create(reminder); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("%w: a pending reminder for this recipe and time already exists", model.ErrConflict)
		}
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	if err := s.cache.Set(ctx, userID, reminder.ID, reminder.Status); err != nil {
		log.Printf("⚠️  Failed to cache status for reminder %s: %v", reminder.ID, err)
	}

	return reminder, nil
}

// List returns the caller's reminders with optional filters
func (s *ReminderService) List(userID uuid.UUID, query model.ReminderListQuery) ([]model.Reminder, error) {
	mealType := model.MealType(query.MealType)
	if query.MealType != "" && !mealType.Valid() {
		return nil, fmt.Errorf("%w: unknown mealType %q", model.ErrValidation, query.MealType)
	}

	status := model.ReminderStatus(query.Status)
	if query.Status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, query.Status)
	}

	return s.repo.List(userID, mealType, status)
}

// GetStatus answers a single status poll, serving from the Redis cache when
// it can and falling back to the store on a miss. Cache entries are scoped to
// the owner, so a hit never leaks another user's reminder.
func (s *ReminderService) GetStatus(ctx context.Context, userID, id uuid.UUID) (model.ReminderStatus, error) {
	if status, err := s.cache.Get(ctx, userID, id); err == nil {
		return status, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		log.Printf("⚠️  Status cache read failed for reminder %s: %v", id, err)
	}

	reminder, err := s.repo.FindByID(userID, id)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, userID, id, reminder.Status); err != nil {
		log.Printf("⚠️  Failed to cache status for reminder %s: %v", id, err)
	}

	return reminder.Status, nil
}

// Delete cancels a reminder. Deleting an id that no longer exists succeeds:
// the client may race a dispatch that already resolved the reminder.
func (s *ReminderService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.Delete(userID, id)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("delete reminder: %w", err)
	}

	if err := s.cache.Invalidate(ctx, userID, id); err != nil {
		log.Printf("⚠️  Failed to invalidate status cache for reminder %s: %v", id, err)
	}

	return nil
}
