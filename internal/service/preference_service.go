package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
)

const maxPreferences = 50

type preferenceRepo interface {
	ListForUser(userID uuid.UUID) ([]model.Preference, error)
	Replace(userID uuid.UUID, names []string) ([]model.Preference, error)
	Delete(userID, id uuid.UUID) error
}

// PreferenceService manages a user's dietary preference set. Saves replace
// the whole set, matching the mobile preferences screen.
type PreferenceService struct {
	repo preferenceRepo
}

func NewPreferenceService(repo preferenceRepo) *PreferenceService {
	return &PreferenceService{repo: repo}
}

// List returns the caller's preferences
func (s *PreferenceService) List(userID uuid.UUID) ([]model.Preference, error) {
	return s.repo.ListForUser(userID)
}

// Set replaces the caller's preferences with the given names. Names are
// trimmed and deduplicated case-insensitively; an effectively empty set is a
// validation error.
func (s *PreferenceService) Set(userID uuid.UUID, names []string) ([]model.Preference, error) {
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}

	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: preferences must contain at least one name", model.ErrValidation)
	}
	if len(cleaned) > maxPreferences {
		return nil, fmt.Errorf("%w: at most %d preferences", model.ErrValidation, maxPreferences)
	}

	return s.repo.Replace(userID, cleaned)
}

// Delete removes one preference. Unlike reminders there is no dispatcher to
// race, so an unknown id is reported as not found.
func (s *PreferenceService) Delete(userID, id uuid.UUID) error {
	return s.repo.Delete(userID, id)
}
