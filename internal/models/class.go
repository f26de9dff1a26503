package models

import "time"

// Class represents an academic class from Creche up to JHS 3.
type Class struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Level       int       `db:"level" json:"level"`
	Description *string   `db:"description" json:"description,omitempty"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ClassWithCount augments a class with its current enrollment count.
type ClassWithCount struct {
	Class
	StudentCount int `db:"student_count" json:"student_count"`
}
