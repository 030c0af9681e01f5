// Package academics stores per-student marks and assignments.
package academics

import (
	"strings"

	"schoolportal/internal/apperr"
)

// Bounds for a single mark.
const (
	MinMark = 0
	MaxMark = 100
)

// MarkRecord is one graded entry. Marks are append-only.
type MarkRecord struct {
	ID        int64  `db:"id" json:"id"`
	StudentID int64  `db:"student_id" json:"student_id"`
	Subject   string `db:"subject" json:"subject"`
	Marks     int    `db:"marks" json:"marks"`
	MarkedBy  *int64 `db:"marked_by" json:"marked_by,omitempty"`
	Date      string `db:"date" json:"date"`
}

// AssignmentStatus tracks whether the student handed the work in.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentSubmitted AssignmentStatus = "submitted"
)

// ParseAssignmentStatus accepts pending or submitted.
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch st := AssignmentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case AssignmentPending, AssignmentSubmitted:
		return st, nil
	}
	return "", apperr.Invalid("status", "status must be pending or submitted")
}

func (s AssignmentStatus) String() string { return string(s) }

// Assignment is a piece of work due from a student.
type Assignment struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	Title     string           `db:"title" json:"title"`
	DueDate   string           `db:"due_date" json:"due_date"`
	Status    AssignmentStatus `db:"status" json:"status"`
}
