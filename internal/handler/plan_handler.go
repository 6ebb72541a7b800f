package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/internal/service"
	"github.com/phamduchuy/savora/internal/ws"
)

// PlanHandler handles the weekly meal plan endpoints
type PlanHandler struct {
	planService *service.PlanService
	hub         *ws.Hub
}

func NewPlanHandler(planService *service.PlanService, hub *ws.Hub) *PlanHandler {
	return &PlanHandler{planService: planService, hub: hub}
}

// GetWeeklyPlan godoc
// @Summary Get the caller's weekly meal plan
// @Tags WeeklyPlan
// @Produce json
// @Success 200 {array} model.WeeklyPlanEntry
// @Security BearerAuth
// @Router /weekly-plan [get]
func (h *PlanHandler) GetWeeklyPlan(c *gin.Context) {
	entries, err := h.planService.List(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load weekly plan"})
		return
	}

	if entries == nil {
		entries = []model.WeeklyPlanEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// AssignSlot godoc
// @Summary Assign a recipe to a weekly-plan slot
// @Description Replacing a slot's recipe cancels the old recipe's pending reminders.
// @Tags WeeklyPlan
// @Accept json
// @Produce json
// @Param day path string true "Plan day (Monday..Sunday)"
// @Param mealType path string true "Meal type"
// @Param body body model.AssignPlanSlotRequest true "Slot assignment"
// @Success 200 {object} model.WeeklyPlanEntry
// @Failure 400 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /weekly-plan/{day}/{mealType} [put]
func (h *PlanHandler) AssignSlot(c *gin.Context) {
	var req model.AssignPlanSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	userID := currentUserID(c)
	day := model.PlanDay(c.Param("day"))
	mealType := model.MealType(c.Param("mealType"))

	entry, err := h.planService.AssignSlot(userID, day, mealType, req.RecipeID)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to assign plan slot"})
		return
	}

	h.hub.PublishPlanUpdated(c.Request.Context(), model.PlanUpdatedEvent{
		UserID:   userID,
		Day:      day,
		MealType: mealType,
		RecipeID: entry.RecipeID,
	})

	c.JSON(http.StatusOK, entry)
}

// ClearSlot godoc
// @Summary Clear a weekly-plan slot
// @Description Also cancels the removed recipe's pending reminders. Idempotent.
// @Tags WeeklyPlan
// @Produce json
// @Param day path string true "Plan day (Monday..Sunday)"
// @Param mealType path string true "Meal type"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /weekly-plan/{day}/{mealType} [delete]
func (h *PlanHandler) ClearSlot(c *gin.Context) {
	day := model.PlanDay(c.Param("day"))
	mealType := model.MealType(c.Param("mealType"))

	if err := h.planService.ClearSlot(currentUserID(c), day, mealType); err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to clear plan slot"})
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Plan slot cleared"})
}
