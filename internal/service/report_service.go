package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/pkg/config"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
	"github.com/fredora-academy/school-api/pkg/export"
)

// ReportGradeRepository feeds report aggregation.
type ReportGradeRepository interface {
	ListByStudentTerm(ctx context.Context, studentID int64, term string, year int) ([]models.GradeDetail, error)
}

// ReportStudentLookup resolves students and class rosters for reports.
type ReportStudentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	ListActiveByClass(ctx context.Context, classID int64) ([]models.Student, error)
	CountActiveInClass(ctx context.Context, classID int64) (int, error)
}

// ReportClassLookup resolves classes for class-level reports.
type ReportClassLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

// ReportScopeChecker answers whether a teacher owns a class.
type ReportScopeChecker interface {
	HasAssignment(ctx context.Context, teacherID, classID int64) (bool, error)
}

// ReportService aggregates grades into report cards. Aggregation queries run
// under an explicit deadline so a heavy term-end request cannot hold a
// connection indefinitely.
type ReportService struct {
	grades   ReportGradeRepository
	students ReportStudentLookup
	classes  ReportClassLookup
	scope    ReportScopeChecker
	cfg      config.ReportsConfig
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(
	grades ReportGradeRepository,
	students ReportStudentLookup,
	classes ReportClassLookup,
	scope ReportScopeChecker,
	cfg config.ReportsConfig,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		grades:   grades,
		students: students,
		classes:  classes,
		scope:    scope,
		cfg:      cfg,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// letterGrade maps a final percentage onto the school's grading scale.
func letterGrade(final float64) (string, string) {
	switch {
	case final >= 80:
		return "A", "Excellent"
	case final >= 70:
		return "B", "Very Good"
	case final >= 60:
		return "C", "Good"
	case final >= 50:
		return "D", "Fair"
	case final >= 40:
		return "E", "Pass"
	default:
		return "F", "Poor"
	}
}

// buildSubjectReports folds raw grades into 60/40 aggregates, one row per
// (subject, term, year) combination so an unfiltered report spans every
// term on record. Multiple continuous assessments are summed before
// weighting.
func buildSubjectReports(grades []models.GradeDetail) []models.SubjectReport {
	type groupKey struct {
		subjectID int64
		term      string
		year      int
	}
	type acc struct {
		report  models.SubjectReport
		caTotal float64
		caMax   float64
	}
	order := make([]groupKey, 0)
	bySubject := make(map[groupKey]*acc)

	for _, g := range grades {
		key := groupKey{g.SubjectID, g.Term, g.AcademicYear}
		a, ok := bySubject[key]
		if !ok {
			a = &acc{report: models.SubjectReport{
				SubjectID:    g.SubjectID,
				SubjectName:  g.SubjectName,
				Term:         g.Term,
				AcademicYear: g.AcademicYear,
			}}
			bySubject[key] = a
			order = append(order, key)
		}
		if g.AssessmentType.IsExam() {
			a.report.ExamScore = g.Score
			a.report.ExamMax = g.MaxScore
		} else {
			a.caTotal += g.Score
			a.caMax += g.MaxScore
			a.report.CACount++
		}
	}

	reports := make([]models.SubjectReport, 0, len(order))
	for _, key := range order {
		a := bySubject[key]
		r := a.report
		r.CAScore = a.caTotal
		r.CAMax = a.caMax
		if r.ExamMax > 0 {
			r.ExamPercentage = r.ExamScore / r.ExamMax * 100
		}
		if r.CAMax > 0 {
			r.CAPercentage = r.CAScore / r.CAMax * 100
		}
		r.FinalScore = r.ExamPercentage*0.6 + r.CAPercentage*0.4
		r.LetterGrade, r.Remarks = letterGrade(r.FinalScore)
		reports = append(reports, r)
	}
	return reports
}

// AcademicReport builds a student's report card. An empty term or zero year
// widens the report to every term on record.
func (s *ReportService) AcademicReport(ctx context.Context, actor *models.User, studentID int64, term string, year int) (*models.AcademicReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, s.reportError(ctx, err, "could not load student")
	}
	if err := s.requireClassScope(ctx, actor, student.ClassID); err != nil {
		return nil, err
	}

	grades, err := s.grades.ListByStudentTerm(ctx, studentID, term, year)
	if err != nil {
		return nil, s.reportError(ctx, err, "could not load grades")
	}
	classSize, err := s.students.CountActiveInClass(ctx, student.ClassID)
	if err != nil {
		return nil, s.reportError(ctx, err, "could not measure class size")
	}

	subjects := buildSubjectReports(grades)
	var total float64
	for _, sub := range subjects {
		total += sub.FinalScore
	}
	var average float64
	if len(subjects) > 0 {
		average = total / float64(len(subjects))
	}

	return &models.AcademicReport{
		Student: models.ReportStudent{
			ID:              student.ID,
			Name:            student.FirstName + " " + student.LastName,
			ClassName:       student.ClassName,
			AdmissionNumber: student.StudentID,
		},
		Term:         termLabel(term),
		AcademicYear: yearLabel(year),
		Subjects:     subjects,
		Summary: models.ReportSummary{
			TotalSubjects:  len(subjects),
			OverallAverage: average,
			ClassSize:      classSize,
		},
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: actor.Name,
	}, nil
}

// ClassReport summarises every active student in a class, best average first.
func (s *ReportService) ClassReport(ctx context.Context, actor *models.User, classID int64, term string, year int) (*models.ClassReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	if err := s.requireClassScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, s.reportError(ctx, err, "could not load class")
	}
	students, err := s.students.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, s.reportError(ctx, err, "could not load students")
	}

	rows := make([]models.ClassReportRow, 0, len(students))
	for _, st := range students {
		grades, err := s.grades.ListByStudentTerm(ctx, st.ID, term, year)
		if err != nil {
			return nil, s.reportError(ctx, err, "could not load grades")
		}
		subjects := buildSubjectReports(grades)
		var total float64
		for _, sub := range subjects {
			total += sub.FinalScore
		}
		var average float64
		if len(subjects) > 0 {
			average = total / float64(len(subjects))
		}
		rows = append(rows, models.ClassReportRow{
			StudentID:       st.ID,
			Name:            st.FirstName + " " + st.LastName,
			AdmissionNumber: st.StudentID,
			SubjectsCount:   len(subjects),
			OverallAverage:  average,
		})
	}

	// Best average first, stable for equal averages.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].OverallAverage > rows[j-1].OverallAverage; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}

	return &models.ClassReport{
		Class:        class,
		Term:         termLabel(term),
		AcademicYear: yearLabel(year),
		Students:     rows,
		GeneratedAt:  time.Now().UTC(),
		GeneratedBy:  actor.Name,
	}, nil
}

// ExportAcademicCSV renders a report card as CSV.
func (s *ReportService) ExportAcademicCSV(report *models.AcademicReport) ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"Subject", "Exam %", "CA %", "Final Score", "Grade", "Remarks"},
	}
	for _, sub := range report.Subjects {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject":     sub.SubjectName,
			"Exam %":      fmt.Sprintf("%.1f", sub.ExamPercentage),
			"CA %":        fmt.Sprintf("%.1f", sub.CAPercentage),
			"Final Score": fmt.Sprintf("%.1f", sub.FinalScore),
			"Grade":       sub.LetterGrade,
			"Remarks":     sub.Remarks,
		})
	}
	return s.csv.Render(dataset)
}

// ExportClassCSV renders a class report as CSV, one row per student in rank
// order.
func (s *ReportService) ExportClassCSV(report *models.ClassReport) ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"Position", "Student", "Admission No", "Subjects", "Average"},
	}
	for i, row := range report.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Position":     strconv.Itoa(i + 1),
			"Student":      row.Name,
			"Admission No": row.AdmissionNumber,
			"Subjects":     strconv.Itoa(row.SubjectsCount),
			"Average":      fmt.Sprintf("%.1f", row.OverallAverage),
		})
	}
	return s.csv.Render(dataset)
}

// ExportAcademicPDF renders a report card as a printable PDF.
func (s *ReportService) ExportAcademicPDF(report *models.AcademicReport) ([]byte, error) {
	card := export.ReportCard{
		StudentName:  report.Student.Name,
		AdmissionNo:  report.Student.AdmissionNumber,
		ClassName:    report.Student.ClassName,
		Term:         report.Term,
		AcademicYear: report.AcademicYear,
		Average:      fmt.Sprintf("%.1f", report.Summary.OverallAverage),
		GeneratedBy:  report.GeneratedBy,
	}
	for _, sub := range report.Subjects {
		card.Subjects = append(card.Subjects, export.ReportCardSubject{
			Name:    sub.SubjectName,
			Exam:    fmt.Sprintf("%.1f", sub.ExamPercentage),
			CA:      fmt.Sprintf("%.1f", sub.CAPercentage),
			Final:   fmt.Sprintf("%.1f", sub.FinalScore),
			Grade:   sub.LetterGrade,
			Remarks: sub.Remarks,
		})
	}
	return s.pdf.RenderReportCard(card)
}

// requireClassScope lets admins through and teachers only into classes they
// are assigned to.
func (s *ReportService) requireClassScope(ctx context.Context, actor *models.User, classID int64) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	ok, err := s.scope.HasAssignment(ctx, actor.ID, classID)
	if err != nil {
		return s.reportError(ctx, err, "could not verify class assignment")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this class")
	}
	return nil
}

func termLabel(term string) string {
	if term == "" {
		return "All Terms"
	}
	return term
}

func yearLabel(year int) string {
	if year == 0 {
		return "All Years"
	}
	return strconv.Itoa(year)
}

// reportError converts deadline hits to the timeout error, everything else
// to an internal error.
func (s *ReportService) reportError(ctx context.Context, err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("report query timed out", zap.Error(err))
		return appErrors.ErrTimeout
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
