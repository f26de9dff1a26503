package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// GradeHandler exposes grading endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Submit godoc
// @Summary Record one assessment score
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param grade body models.GradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Submit(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req models.GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.grades.SubmitGrade(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Action == "created" {
		status = http.StatusCreated
	}
	response.Message(c, status, result, "grade "+result.Action)
}

// BatchSubmit godoc
// @Summary Record several scores in one call
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param grades body models.BatchGradeRequest true "Grades"
// @Success 200 {object} response.Envelope
// @Router /grades/batch-update [post]
func (h *GradeHandler) BatchSubmit(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var req models.BatchGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.grades.BatchSubmit(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.FailedAt != nil {
		response.Message(c, http.StatusBadRequest, result, result.Error)
		return
	}
	response.Message(c, http.StatusOK, result, "grades recorded")
}

// List returns grades matching the query filters.
func (h *GradeHandler) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	filter := models.GradeFilter{
		StudentID:    queryInt64(c, "student_id"),
		SubjectID:    queryInt64(c, "subject_id"),
		ClassID:      queryInt64(c, "class_id"),
		Term:         c.Query("term"),
		AcademicYear: queryInt(c, "academic_year"),
	}
	grades, err := h.grades.List(c.Request.Context(), user, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Update rewrites the score of an existing grade.
func (h *GradeHandler) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.UpdateGrade(c.Request.Context(), user, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, grade, "grade updated")
}

// Delete removes a grade.
func (h *GradeHandler) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.grades.DeleteGrade(c.Request.Context(), user, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, nil, "grade deleted")
}

// MyStudents godoc
// @Summary Roster of every class the current teacher owns
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grades/my-students [get]
func (h *GradeHandler) MyStudents(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	roster, err := h.grades.MyStudents(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// ClassStudents returns the active students of one class.
func (h *GradeHandler) ClassStudents(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	students, err := h.grades.ClassStudents(c.Request.Context(), user, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
