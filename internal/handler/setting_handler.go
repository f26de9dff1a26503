package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/middleware"
	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// SettingHandler exposes school configuration endpoints.
type SettingHandler struct {
	settings *service.SettingService
}

// NewSettingHandler constructs the handler.
func NewSettingHandler(settings *service.SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// List returns settings visible to the caller.
func (h *SettingHandler) List(c *gin.Context) {
	// Settings are readable without auth; only public keys show then.
	actor, _ := middleware.CurrentUser(c)
	settings, err := h.settings.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Get returns one setting by key.
func (h *SettingHandler) Get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	setting, err := h.settings.Get(c.Request.Context(), actor, c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

// Set upserts a setting value.
func (h *SettingHandler) Set(c *gin.Context) {
	var req models.SettingRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.settings.Set(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, setting, "setting saved")
}
