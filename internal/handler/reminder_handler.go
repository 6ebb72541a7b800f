package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/internal/service"
)

// ReminderHandler handles the meal-reminder endpoints
type ReminderHandler struct {
	reminderService *service.ReminderService
}

func NewReminderHandler(reminderService *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// CreateAlarm godoc
// @Summary Schedule a meal reminder
// @Tags Reminders
// @Accept json
// @Produce json
// @Param body body model.CreateAlarmRequest true "Alarm request"
// @Success 201 {object} model.Reminder
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /alarm [post]
func (h *ReminderHandler) CreateAlarm(c *gin.Context) {
	var req model.CreateAlarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	reminder, err := h.reminderService.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrValidation):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		case errors.Is(err, model.ErrConflict):
			c.JSON(http.StatusConflict, model.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to create reminder"})
		}
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// ListNotifications godoc
// @Summary List the caller's reminders
// @Tags Reminders
// @Produce json
// @Param mealType query string false "Filter by meal type"
// @Param status query string false "Filter by status"
// @Success 200 {array} model.Reminder
// @Failure 400 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *ReminderHandler) ListNotifications(c *gin.Context) {
	var query model.ReminderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid query", Message: err.Error()})
		return
	}

	reminders, err := h.reminderService.List(currentUserID(c), query)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list reminders"})
		return
	}

	if reminders == nil {
		reminders = []model.Reminder{}
	}
	c.JSON(http.StatusOK, reminders)
}

// GetNotificationStatus godoc
// @Summary Get one reminder's delivery status
// @Tags Reminders
// @Produce json
// @Param id path string true "Reminder ID"
// @Success 200 {object} model.ReminderStatusResponse
// @Failure 404 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id} [get]
func (h *ReminderHandler) GetNotificationStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid reminder id"})
		return
	}

	status, err := h.reminderService.GetStatus(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get reminder status"})
		return
	}

	c.JSON(http.StatusOK, model.ReminderStatusResponse{ID: id, Status: status})
}

// DeleteNotification godoc
// @Summary Cancel a reminder
// @Description Idempotent: deleting an id that no longer exists still succeeds,
// @Description because the client may race a dispatch-triggered resolution.
// @Tags Reminders
// @Produce json
// @Param id path string true "Reminder ID"
// @Success 200 {object} model.DeletedResponse
// @Failure 400 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id} [delete]
func (h *ReminderHandler) DeleteNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid reminder id"})
		return
	}

	if err := h.reminderService.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to delete reminder"})
		return
	}

	c.JSON(http.StatusOK, model.DeletedResponse{Message: "Alarm deleted successfully"})
}

// currentUserID reads the authenticated user injected by the auth middleware
func currentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
