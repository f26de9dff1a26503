package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/response"
)

// exportTag names the term slice of an export filename.
func exportTag(term string) string {
	if term == "" {
		return "all-terms"
	}
	return term
}

// ReportHandler exposes report card endpoints with CSV/PDF export.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Academic godoc
// @Summary Build a student's report card for one term
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student id"
// @Param term query string false "Term, all terms when omitted"
// @Param academic_year query int false "Academic year, all years when omitted"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /reports/academic/{studentId} [get]
func (h *ReportHandler) Academic(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	term := c.Query("term")
	year := queryInt(c, "academic_year")

	report, err := h.reports.AcademicReport(c.Request.Context(), user, studentID, term, year)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.Query("format") {
	case "csv":
		payload, err := h.reports.ExportAcademicCSV(report)
		if err != nil {
			response.Error(c, err)
			return
		}
		filename := fmt.Sprintf("report-%s-%s.csv", report.Student.AdmissionNumber, exportTag(term))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.reports.ExportAcademicPDF(report)
		if err != nil {
			response.Error(c, err)
			return
		}
		filename := fmt.Sprintf("report-%s-%s.pdf", report.Student.AdmissionNumber, exportTag(term))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.JSON(c, http.StatusOK, report, nil)
	}
}

// Class godoc
// @Summary Summarise every active student in a class
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param classId path int true "Class id"
// @Param term query string false "Term, all terms when omitted"
// @Param academic_year query int false "Academic year, all years when omitted"
// @Param format query string false "Export format (csv)"
// @Success 200 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /reports/class/{classId} [get]
func (h *ReportHandler) Class(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	term := c.Query("term")
	year := queryInt(c, "academic_year")

	report, err := h.reports.ClassReport(c.Request.Context(), user, classID, term, year)
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("format") == "csv" {
		payload, err := h.reports.ExportClassCSV(report)
		if err != nil {
			response.Error(c, err)
			return
		}
		filename := fmt.Sprintf("class-report-%d-%s.csv", classID, exportTag(term))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv", payload)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
