package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// DashboardHandler exposes the admin statistics endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary School-wide aggregate statistics
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param term query string false "Term for fee totals"
// @Param academic_year query int false "Academic year for fee totals"
// @Success 200 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), c.Query("term"), queryInt(c, "academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
