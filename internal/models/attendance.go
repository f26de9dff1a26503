package models

import "time"

// AttendanceStatus enumerates daily attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is one of the known outcomes.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Attendance records one student's presence for one calendar day.
// Unique per (student_id, date).
type Attendance struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	ClassID   int64            `db:"class_id" json:"class_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	TimeIn    *string          `db:"time_in" json:"time_in,omitempty"`
	TimeOut   *string          `db:"time_out" json:"time_out,omitempty"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	MarkedBy  int64            `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceDetail joins attendance rows with student display fields.
type AttendanceDetail struct {
	Attendance
	StudentName     string `db:"student_name" json:"student_name"`
	AdmissionNumber string `db:"admission_number" json:"admission_number"`
}

// AttendanceStats summarises a student's attendance over a date range.
type AttendanceStats struct {
	TotalDays      int     `db:"total_days" json:"total_days"`
	PresentDays    int     `db:"present_days" json:"present_days"`
	AbsentDays     int     `db:"absent_days" json:"absent_days"`
	LateDays       int     `db:"late_days" json:"late_days"`
	ExcusedDays    int     `db:"excused_days" json:"excused_days"`
	AttendanceRate float64 `json:"attendance_rate"`
}
