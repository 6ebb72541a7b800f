package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/internal/repository"
)

// RecipeHandler serves the local recipe catalog
type RecipeHandler struct {
	recipeRepo *repository.RecipeRepository
}

func NewRecipeHandler(recipeRepo *repository.RecipeRepository) *RecipeHandler {
	return &RecipeHandler{recipeRepo: recipeRepo}
}

// ListRecipes godoc
// @Summary List catalog recipes
// @Tags Recipes
// @Produce json
// @Param category query string false "Filter by category"
// @Param limit query int false "Max results (default 50)"
// @Success 200 {array} model.Recipe
// @Security BearerAuth
// @Router /recipes [get]
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	recipes, err := h.recipeRepo.List(c.Query("category"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list recipes"})
		return
	}

	if recipes == nil {
		recipes = []model.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// ListCategories godoc
// @Summary List recipe categories
// @Description Distinct categories of the catalog, for the browse screen.
// @Description Use recipes?category= to fetch a category's recipes.
// @Tags Recipes
// @Produce json
// @Success 200 {array} string
// @Security BearerAuth
// @Router /categories [get]
func (h *RecipeHandler) ListCategories(c *gin.Context) {
	categories, err := h.recipeRepo.Categories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list categories"})
		return
	}

	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetRecipe godoc
// @Summary Get a recipe by id
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} model.Recipe
// @Failure 404 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid recipe id"})
		return
	}

	recipe, err := h.recipeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}
