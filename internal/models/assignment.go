package models

import "time"

// ClassAssignment links a teacher to a class they own for grading and
// attendance purposes. Unique per (teacher_id, class_id).
type ClassAssignment struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AssignedClass is a class row joined through a teacher's class assignments.
type AssignedClass struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Level      int       `db:"level" json:"level"`
	Capacity   int       `db:"capacity" json:"capacity"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// SubjectAssignment links a teacher to a subject taught in a specific class.
// Unique per (teacher_id, subject_id, class_id) and independent from class
// assignments: holding one does not imply the other.
type SubjectAssignment struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectAssignmentDetail enriches a subject assignment with display names.
type SubjectAssignmentDetail struct {
	SubjectAssignment
	SubjectName     string `db:"subject_name" json:"subject_name"`
	SubjectCode     string `db:"subject_code" json:"subject_code"`
	ClassName       string `db:"class_name" json:"class_name"`
	ClassLevel      int    `db:"class_level" json:"class_level"`
	TeacherName     string `db:"teacher_name" json:"teacher_name"`
	TeacherUsername string `db:"teacher_username" json:"teacher_username"`
}

// BulkAssignment is one teacher's desired class set within a bulk request.
type BulkAssignment struct {
	TeacherID int64   `json:"teacher_id" validate:"required"`
	ClassIDs  []int64 `json:"class_ids" validate:"required,min=1"`
}
