package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// AttendanceHandler exposes daily attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Mark godoc
// @Summary Record a class register for one day
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param register body models.MarkAttendanceRequest true "Register"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req models.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	records, err := h.attendance.Mark(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, records, "attendance recorded")
}

// ClassRegister returns one day's register for a class.
func (h *AttendanceHandler) ClassRegister(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	records, err := h.attendance.ClassRegister(c.Request.Context(), user, classID, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// StudentHistory returns a student's attendance over a date range.
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	records, stats, err := h.attendance.StudentHistory(c.Request.Context(), studentID, c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"records": records, "stats": stats}, nil)
}
