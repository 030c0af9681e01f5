package academics

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Repository persists marks and assignments.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repo.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertMark appends a mark row and returns it with its id.
func (r *Repository) InsertMark(ctx context.Context, m MarkRecord) (MarkRecord, error) {
	var out MarkRecord
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		INSERT INTO marks (student_id, subject, marks, marked_by, date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, student_id, subject, marks, marked_by, date
	`), m.StudentID, m.Subject, m.Marks, m.MarkedBy, m.Date)
	if err != nil {
		return MarkRecord{}, errors.Wrap(err, "insert mark")
	}
	return out, nil
}

// MarksFor returns every mark of a student, newest first.
func (r *Repository) MarksFor(ctx context.Context, studentID int64) ([]MarkRecord, error) {
	res := []MarkRecord{}
	err := r.db.SelectContext(ctx, &res, r.db.Rebind(`
		SELECT id, student_id, subject, marks, marked_by, date
		FROM marks
		WHERE student_id = ?
		ORDER BY date DESC, id DESC
	`), studentID)
	if err != nil {
		return nil, errors.Wrap(err, "list marks")
	}
	return res, nil
}

// InsertAssignment stores an assignment.
func (r *Repository) InsertAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	var out Assignment
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		INSERT INTO assignments (student_id, title, due_date, status)
		VALUES (?, ?, ?, ?)
		RETURNING id, student_id, title, due_date, status
	`), a.StudentID, a.Title, a.DueDate, a.Status.String())
	if err != nil {
		return Assignment{}, errors.Wrap(err, "insert assignment")
	}
	return out, nil
}

// AssignmentsFor returns a student's assignments by due date, earliest first.
func (r *Repository) AssignmentsFor(ctx context.Context, studentID int64) ([]Assignment, error) {
	res := []Assignment{}
	err := r.db.SelectContext(ctx, &res, r.db.Rebind(`
		SELECT id, student_id, title, due_date, status
		FROM assignments
		WHERE student_id = ?
		ORDER BY due_date ASC, id ASC
	`), studentID)
	if err != nil {
		return nil, errors.Wrap(err, "list assignments")
	}
	return res, nil
}
