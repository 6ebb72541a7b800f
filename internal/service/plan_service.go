package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
)

type planRepo interface {
	ListForUser(userID uuid.UUID) ([]model.WeeklyPlanEntry, error)
	FindSlot(userID uuid.UUID, day model.PlanDay, mealType model.MealType) (*model.WeeklyPlanEntry, error)
	UpsertSlot(entry *model.WeeklyPlanEntry) error
	ClearSlot(userID uuid.UUID, day model.PlanDay, mealType model.MealType) error
}

type recipeFinder interface {
	FindByID(id uuid.UUID) (*model.Recipe, error)
}

type reminderSuperseder interface {
	DeletePendingForRecipe(userID, recipeID uuid.UUID) (int64, error)
}

// PlanService manages the weekly meal plan. Its one coupling to the reminder
// core: replacing or clearing a slot supersedes the slot recipe's pending
// reminders, since the user is no longer cooking that recipe.
type PlanService struct {
	plans     planRepo
	recipes   recipeFinder
	reminders reminderSuperseder
}

func NewPlanService(plans planRepo, recipes recipeFinder, reminders reminderSuperseder) *PlanService {
	return &PlanService{
		plans:     plans,
		recipes:   recipes,
		reminders: reminders,
	}
}

// List returns the caller's weekly plan
func (s *PlanService) List(userID uuid.UUID) ([]model.WeeklyPlanEntry, error) {
	return s.plans.ListForUser(userID)
}

// AssignSlot puts a recipe into a (day, meal) slot. If the slot previously
// held a different recipe, that recipe's pending reminders are cancelled.
func (s *PlanService) AssignSlot(userID uuid.UUID, day model.PlanDay, mealType model.MealType, recipeID uuid.UUID) (*model.WeeklyPlanEntry, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: unknown day %q", model.ErrValidation, day)
	}
	if !mealType.Valid() {
		return nil, fmt.Errorf("%w: unknown mealType %q", model.ErrValidation, mealType)
	}

	recipe, err := s.recipes.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: recipe %s does not exist", model.ErrValidation, recipeID)
		}
		return nil, err
	}

	previous, err := s.plans.FindSlot(userID, day, mealType)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	entry := &model.WeeklyPlanEntry{
		UserID:   userID,
		Day:      day,
		MealType: mealType,
		RecipeID: recipe.ID,
	}
	if err := s.plans.UpsertSlot(entry); err != nil {
		return nil, fmt.Errorf("assign plan slot: %w", err)
	}
	entry.Recipe = *recipe

	if previous != nil && previous.RecipeID != recipe.ID {
		s.supersede(userID, previous.RecipeID)
	}

	return entry, nil
}

// ClearSlot empties a slot and cancels the removed recipe's pending
// reminders. Clearing an empty slot succeeds.
func (s *PlanService) ClearSlot(userID uuid.UUID, day model.PlanDay, mealType model.MealType) error {
	if !day.Valid() {
		return fmt.Errorf("%w: unknown day %q", model.ErrValidation, day)
	}
	if !mealType.Valid() {
		return fmt.Errorf("%w: unknown mealType %q", model.ErrValidation, mealType)
	}

	previous, err := s.plans.FindSlot(userID, day, mealType)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.plans.ClearSlot(userID, day, mealType); err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("clear plan slot: %w", err)
	}

	s.supersede(userID, previous.RecipeID)
	return nil
}

func (s *PlanService) supersede(userID, recipeID uuid.UUID) {
	n, err := s.reminders.DeletePendingForRecipe(userID, recipeID)
	if err != nil {
		log.Printf("⚠️  Failed to supersede reminders for recipe %s: %v", recipeID, err)
		return
	}
	if n > 0 {
		log.Printf("🔔 Superseded %d pending reminder(s) for replaced recipe %s", n, recipeID)
	}
}
