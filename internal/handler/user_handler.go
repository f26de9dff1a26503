package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// UserHandler exposes teacher account and assignment endpoints.
type UserHandler struct {
	users       *service.UserService
	assignments *service.AssignmentService
}

// NewUserHandler constructs the handler.
func NewUserHandler(users *service.UserService, assignments *service.AssignmentService) *UserHandler {
	return &UserHandler{users: users, assignments: assignments}
}

// CreateTeacher godoc
// @Summary Create a teacher account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teacher body models.CreateTeacherRequest true "Teacher"
// @Success 201 {object} response.Envelope
// @Router /users/teachers [post]
func (h *UserHandler) CreateTeacher(c *gin.Context) {
	var req models.CreateTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	teacher, err := h.users.CreateTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher, "teacher created")
}

// ListTeachers godoc
// @Summary List teachers with their assigned classes
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /users/teachers [get]
func (h *UserHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.users.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// GetTeacher returns one teacher.
func (h *UserHandler) GetTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	teacher, err := h.users.GetTeacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// ResetPassword sets a new password for a teacher.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, nil, "password reset")
}

// DeactivateTeacher soft-deletes a teacher account.
func (h *UserHandler) DeactivateTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.DeactivateTeacher(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, nil, "teacher deactivated")
}

// SetClassAssignments godoc
// @Summary Replace a teacher's class assignments
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher id"
// @Param assignments body models.SetClassAssignmentsRequest true "Class ids"
// @Success 200 {object} response.Envelope
// @Router /users/teachers/{id}/classes [post]
func (h *UserHandler) SetClassAssignments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.SetClassAssignmentsRequest
	if !bindJSON(c, &req) {
		return
	}
	classes, err := h.assignments.SetClassAssignments(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, classes, "class assignments updated")
}

// BulkAssignClasses replaces several teachers' class sets atomically.
func (h *UserHandler) BulkAssignClasses(c *gin.Context) {
	var req models.BulkAssignRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.assignments.BulkAssign(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, nil, "assignments applied")
}

// RemoveClassAssignment deletes one teacher-class link.
func (h *UserHandler) RemoveClassAssignment(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	if err := h.assignments.RemoveClassAssignment(c.Request.Context(), teacherID, classID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, nil, "assignment removed")
}

// MyClasses godoc
// @Summary List the classes assigned to the current teacher
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /users/my-classes [get]
func (h *UserHandler) MyClasses(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	classes, err := h.assignments.MyClasses(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}
