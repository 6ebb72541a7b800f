package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/internal/service"
)

// PreferenceHandler handles the dietary-preference endpoints
type PreferenceHandler struct {
	preferenceService *service.PreferenceService
}

func NewPreferenceHandler(preferenceService *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// ListPreferences godoc
// @Summary List the caller's dietary preferences
// @Tags Preferences
// @Produce json
// @Success 200 {array} model.Preference
// @Security BearerAuth
// @Router /preferences [get]
func (h *PreferenceHandler) ListPreferences(c *gin.Context) {
	preferences, err := h.preferenceService.List(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list preferences"})
		return
	}

	if preferences == nil {
		preferences = []model.Preference{}
	}
	c.JSON(http.StatusOK, preferences)
}

// SetPreferences godoc
// @Summary Replace the caller's dietary preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param body body model.SetPreferencesRequest true "Preference names"
// @Success 200 {array} model.Preference
// @Failure 400 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /preferences [put]
func (h *PreferenceHandler) SetPreferences(c *gin.Context) {
	var req model.SetPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	preferences, err := h.preferenceService.Set(currentUserID(c), req.Preferences)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, preferences)
}

// DeletePreference godoc
// @Summary Remove one dietary preference
// @Tags Preferences
// @Produce json
// @Param id path string true "Preference ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Security BearerAuth
// @Router /preferences/{id} [delete]
func (h *PreferenceHandler) DeletePreference(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid preference id"})
		return
	}

	if err := h.preferenceService.Delete(currentUserID(c), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Preference not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to delete preference"})
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Preference deleted successfully"})
}
