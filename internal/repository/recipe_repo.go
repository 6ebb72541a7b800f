package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"gorm.io/gorm"
)

// RecipeRepository handles database operations for the recipe catalog
type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a new recipe
func (r *RecipeRepository) Create(recipe *model.Recipe) error {
	return r.db.Create(recipe).Error
}

// FindByID finds a recipe by UUID
func (r *RecipeRepository) FindByID(id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.Where("id = ?", id).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes, optionally filtered by category
func (r *RecipeRepository) List(category string, limit int) ([]model.Recipe, error) {
	q := r.db.Order("name ASC").Limit(limit)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var recipes []model.Recipe
	err := q.Find(&recipes).Error
	return recipes, err
}

// Categories returns the distinct recipe categories in the catalog
func (r *RecipeRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&model.Recipe{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Count returns the number of recipes in the catalog
func (r *RecipeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Recipe{}).Count(&count).Error
	return count, err
}
