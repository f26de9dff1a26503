package models

import "time"

// SubjectReport aggregates one subject's assessments into the 60/40 split.
type SubjectReport struct {
	SubjectID      int64   `json:"subject_id"`
	SubjectName    string  `json:"subject_name"`
	SubjectCode    string  `json:"subject_code"`
	Term           string  `json:"term"`
	AcademicYear   int     `json:"academic_year"`
	ExamScore      float64 `json:"exam_score"`
	ExamMax        float64 `json:"exam_max"`
	CAScore        float64 `json:"ca_score"`
	CAMax          float64 `json:"ca_max"`
	CACount        int     `json:"ca_count"`
	ExamPercentage float64 `json:"exam_percentage"`
	CAPercentage   float64 `json:"ca_percentage"`
	FinalScore     float64 `json:"final_score"`
	LetterGrade    string  `json:"letter_grade"`
	Remarks        string  `json:"remarks"`
}

// ReportStudent identifies the student a report card belongs to.
type ReportStudent struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ClassName       string `json:"class"`
	AdmissionNumber string `json:"admission_number"`
}

// ReportSummary carries the aggregate numbers for a report card.
type ReportSummary struct {
	TotalSubjects  int     `json:"total_subjects"`
	OverallAverage float64 `json:"overall_average"`
	ClassSize      int     `json:"class_size"`
}

// AcademicReport is a full report card for one student.
type AcademicReport struct {
	Student      ReportStudent   `json:"student"`
	Term         string          `json:"term"`
	AcademicYear string          `json:"academic_year"`
	Subjects     []SubjectReport `json:"subjects"`
	Summary      ReportSummary   `json:"summary"`
	GeneratedAt  time.Time       `json:"generated_at"`
	GeneratedBy  string          `json:"generated_by"`
}

// ClassReportRow ranks one student within a class report.
type ClassReportRow struct {
	StudentID       int64   `json:"id"`
	Name            string  `json:"name"`
	AdmissionNumber string  `json:"admission_number"`
	SubjectsCount   int     `json:"subjects_count"`
	OverallAverage  float64 `json:"overall_average"`
}

// ClassReport summarises every active student in a class, best average first.
type ClassReport struct {
	Class        *Class           `json:"class"`
	Term         string           `json:"term"`
	AcademicYear string           `json:"academic_year"`
	Students     []ClassReportRow `json:"students"`
	GeneratedAt  time.Time        `json:"generated_at"`
	GeneratedBy  string           `json:"generated_by"`
}

// DashboardStats is the admin landing page aggregate.
type DashboardStats struct {
	ActiveStudents      int     `db:"active_students" json:"active_students"`
	ActiveTeachers      int     `db:"active_teachers" json:"active_teachers"`
	TotalClasses        int     `db:"total_classes" json:"total_classes"`
	ActiveSubjects      int     `db:"active_subjects" json:"active_subjects"`
	AttendanceRateToday float64 `json:"attendance_rate_today"`
	FeesCollectedTerm   float64 `db:"fees_collected_term" json:"fees_collected_term"`
}
