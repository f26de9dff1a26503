package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// SubjectHandler exposes subject catalogue and teaching assignment endpoints.
type SubjectHandler struct {
	subjects    *service.SubjectService
	assignments *service.AssignmentService
}

// NewSubjectHandler constructs the handler.
func NewSubjectHandler(subjects *service.SubjectService, assignments *service.AssignmentService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects, assignments: assignments}
}

// List godoc
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active subjects"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	subjects, err := h.subjects.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Get returns one subject.
func (h *SubjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	subject, err := h.subjects.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Create adds a subject.
func (h *SubjectHandler) Create(c *gin.Context) {
	var req models.SubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.subjects.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject, "subject created")
}

// Update edits a subject.
func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.SubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.subjects.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, subject, "subject updated")
}

// Delete soft-deletes a subject.
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	graded, err := h.subjects.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "subject deactivated"
	if graded {
		msg = "subject deactivated; recorded grades are retained"
	}
	response.Message(c, http.StatusOK, nil, msg)
}

// Assign godoc
// @Summary Assign a teacher to a subject within a class
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment body models.AssignSubjectRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /subjects/assign [post]
func (h *SubjectHandler) Assign(c *gin.Context) {
	var req models.AssignSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.assignments.AssignSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment, "subject assigned")
}

// ListAssignments returns teaching links, optionally for one teacher.
func (h *SubjectHandler) ListAssignments(c *gin.Context) {
	teacherID := queryInt64(c, "teacher_id")
	assignments, err := h.assignments.ListSubjectAssignments(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// TeacherAssignments godoc
// @Summary List one teacher's subject assignments
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher id"
// @Success 200 {object} response.Envelope
// @Router /subjects/assignments/teacher/{id} [get]
func (h *SubjectHandler) TeacherAssignments(c *gin.Context) {
	teacherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignments, err := h.assignments.ListSubjectAssignments(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Teaching returns the subjects the current teacher teaches in a class, for
// the grade entry screen. Admins may inspect any teacher via teacher_id.
func (h *SubjectHandler) Teaching(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	teacherID := user.ID
	if user.Role == models.RoleAdmin {
		if id := queryInt64(c, "teacher_id"); id != 0 {
			teacherID = id
		}
	}
	subjects, err := h.assignments.TeacherClassSubjects(c.Request.Context(), teacherID, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// RemoveAssignment deletes a teaching link.
func (h *SubjectHandler) RemoveAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.assignments.RemoveSubjectAssignment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, nil, "assignment removed")
}
