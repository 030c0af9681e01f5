package attendance

import (
	"context"

	"schoolportal/internal/clock"
	"schoolportal/internal/users"
)

// RecentWindow is how many of a student's latest records the dashboard shows and scores.
const RecentWindow = 7

// StudentFinder resolves a student id, failing with a validation error for anything else.
type StudentFinder interface {
	Student(ctx context.Context, id int64) (users.User, error)
}

// Service validates and records attendance marks.
type Service struct {
	repo     *Repository
	students StudentFinder
	clock    clock.Clock
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, students StudentFinder, clk clock.Clock) *Service {
	return &Service{repo: repo, students: students, clock: clk}
}

// Mark records today's status for a student, replacing any earlier mark for today.
func (s *Service) Mark(ctx context.Context, studentID int64, status string, markedBy int64) (Record, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return Record{}, err
	}
	if _, err := s.students.Student(ctx, studentID); err != nil {
		return Record{}, err
	}
	return s.repo.Upsert(ctx, studentID, s.clock.Today(), st, markedBy)
}

// Recent returns the student's latest records and their summary.
func (s *Service) Recent(ctx context.Context, studentID int64) ([]Record, Summary, error) {
	records, err := s.repo.Recent(ctx, studentID, RecentWindow)
	if err != nil {
		return nil, Summary{}, err
	}
	return records, Summarize(records), nil
}

// Today returns today's date and the student -> status map for it.
func (s *Service) Today(ctx context.Context) (string, map[int64]Status, error) {
	today := s.clock.Today()
	records, err := s.repo.ForDate(ctx, today)
	if err != nil {
		return "", nil, err
	}
	return today, ByStudent(records), nil
}
