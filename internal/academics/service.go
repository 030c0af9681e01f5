package academics

import (
	"context"
	"strings"

	"schoolportal/internal/apperr"
	"schoolportal/internal/attendance"
	"schoolportal/internal/clock"
)

// Service records marks entered by faculty.
type Service struct {
	repo     *Repository
	students attendance.StudentFinder
	clock    clock.Clock
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, students attendance.StudentFinder, clk clock.Clock) *Service {
	return &Service{repo: repo, students: students, clock: clk}
}

// SubmitMarks appends a mark dated today. Values outside [MinMark, MaxMark] are rejected.
func (s *Service) SubmitMarks(ctx context.Context, studentID int64, subject string, marks int, markedBy int64) (MarkRecord, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return MarkRecord{}, apperr.Invalid("subject", "subject is required")
	}
	if marks < MinMark || marks > MaxMark {
		return MarkRecord{}, apperr.Invalid("marks", "marks must be between 0 and 100")
	}
	if _, err := s.students.Student(ctx, studentID); err != nil {
		return MarkRecord{}, err
	}
	return s.repo.InsertMark(ctx, MarkRecord{
		StudentID: studentID,
		Subject:   subject,
		Marks:     marks,
		MarkedBy:  &markedBy,
		Date:      s.clock.Today(),
	})
}

// Marks returns a student's marks, newest first.
func (s *Service) Marks(ctx context.Context, studentID int64) ([]MarkRecord, error) {
	return s.repo.MarksFor(ctx, studentID)
}

// Assignments returns a student's assignments by due date.
func (s *Service) Assignments(ctx context.Context, studentID int64) ([]Assignment, error) {
	return s.repo.AssignmentsFor(ctx, studentID)
}
