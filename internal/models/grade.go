package models

import (
	"strings"
	"time"
)

// AssessmentType enumerates the graded assessment categories.
type AssessmentType string

const (
	AssessmentExam       AssessmentType = "exam"
	AssessmentContinuous AssessmentType = "continuous_assessment"
	AssessmentProject    AssessmentType = "project"
	AssessmentAssignment AssessmentType = "assignment"
)

// IsExam reports whether the type counts toward the 60-point exam split.
// The comparison is case-insensitive to tolerate legacy clients.
func (t AssessmentType) IsExam() bool {
	return strings.EqualFold(string(t), string(AssessmentExam))
}

// Valid reports whether the assessment type is one of the known categories.
func (t AssessmentType) Valid() bool {
	switch AssessmentType(strings.ToLower(string(t))) {
	case AssessmentExam, AssessmentContinuous, AssessmentProject, AssessmentAssignment:
		return true
	}
	return false
}

// Grade is a single graded assessment, unique per
// (student_id, subject_id, term, academic_year, assessment_type).
type Grade struct {
	ID             int64          `db:"id" json:"id"`
	StudentID      int64          `db:"student_id" json:"student_id"`
	SubjectID      int64          `db:"subject_id" json:"subject_id"`
	ClassID        int64          `db:"class_id" json:"class_id"`
	Term           string         `db:"term" json:"term"`
	AcademicYear   int            `db:"academic_year" json:"academic_year"`
	AssessmentType AssessmentType `db:"assessment_type" json:"assessment_type"`
	Score          float64        `db:"score" json:"score"`
	MaxScore       float64        `db:"max_score" json:"max_score"`
	WeightedScore  float64        `db:"weighted_score" json:"weighted_score"`
	Remarks        *string        `db:"remarks" json:"remarks,omitempty"`
	RecordedBy     int64          `db:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// GradeDetail joins a grade with student/subject/class display fields.
type GradeDetail struct {
	Grade
	StudentName     string `db:"student_name" json:"student_name"`
	AdmissionNumber string `db:"admission_number" json:"admission_number"`
	SubjectName     string `db:"subject_name" json:"subject_name"`
	ClassName       string `db:"class_name" json:"class_name"`
}

// GradeResult is an upserted grade tagged with what the storage layer did.
type GradeResult struct {
	Grade
	Action string `json:"action"`
}

// GradeFilter scopes grade listings.
type GradeFilter struct {
	StudentID    int64
	SubjectID    int64
	ClassID      int64
	Term         string
	AcademicYear int
	// TeacherID restricts results to the teacher's assigned classes.
	TeacherID int64
}
