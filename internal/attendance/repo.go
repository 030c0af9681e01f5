package attendance

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const recordColumns = `id, student_id, date, status, marked_by`

// Repository persists the attendance ledger.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repo.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the status for (studentID, date) in a single statement. An existing row for the
// same day is overwritten together with its marker; the unique index makes concurrent calls
// collapse into one row.
func (r *Repository) Upsert(ctx context.Context, studentID int64, date string, status Status, markedBy int64) (Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		INSERT INTO attendance (student_id, date, status, marked_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (student_id, date) DO UPDATE SET
			status = excluded.status,
			marked_by = excluded.marked_by
		RETURNING `+recordColumns), studentID, date, status.String(), markedBy)
	if err != nil {
		return Record{}, errors.Wrap(err, "upsert attendance")
	}
	return rec, nil
}

// Recent returns the latest limit records of a student, newest first.
func (r *Repository) Recent(ctx context.Context, studentID int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 7
	}
	res := []Record{}
	err := r.db.SelectContext(ctx, &res, r.db.Rebind(`
		SELECT `+recordColumns+`
		FROM attendance
		WHERE student_id = ?
		ORDER BY date DESC
		LIMIT ?
	`), studentID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "recent attendance")
	}
	return res, nil
}

// ForDate returns every record dated date.
func (r *Repository) ForDate(ctx context.Context, date string) ([]Record, error) {
	res := []Record{}
	err := r.db.SelectContext(ctx, &res, r.db.Rebind(`
		SELECT `+recordColumns+` FROM attendance WHERE date = ? ORDER BY student_id
	`), date)
	if err != nil {
		return nil, errors.Wrap(err, "attendance for date")
	}
	return res, nil
}

// Get returns the record for (studentID, date), if any.
func (r *Repository) Get(ctx context.Context, studentID int64, date string) (*Record, error) {
	res := []Record{}
	err := r.db.SelectContext(ctx, &res, r.db.Rebind(`
		SELECT `+recordColumns+` FROM attendance WHERE student_id = ? AND date = ?
	`), studentID, date)
	if err != nil {
		return nil, errors.Wrap(err, "get attendance")
	}
	if len(res) == 0 {
		return nil, nil
	}
	return &res[0], nil
}

// ReportRow is a ledger row joined with the student and marker names.
type ReportRow struct {
	Date         string  `db:"date"`
	StudentID    int64   `db:"student_id"`
	StudentName  string  `db:"student_name"`
	StudentEmail string  `db:"student_email"`
	Status       Status  `db:"status"`
	MarkedBy     *string `db:"marked_by_name"`
}

// Between returns the rows dated within [from, to], ordered by date then student name.
// Empty bounds are open.
func (r *Repository) Between(ctx context.Context, from, to string) ([]ReportRow, error) {
	query := `
		SELECT a.date, a.student_id, s.fullname AS student_name, s.email AS student_email,
			a.status, m.fullname AS marked_by_name
		FROM attendance a
		JOIN users s ON s.id = a.student_id
		LEFT JOIN users m ON m.id = a.marked_by`
	args := []any{}
	clauses := []string{}
	if from != "" {
		clauses = append(clauses, "a.date >= ?")
		args = append(args, from)
	}
	if to != "" {
		clauses = append(clauses, "a.date <= ?")
		args = append(args, to)
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY a.date, s.fullname, a.student_id"

	res := []ReportRow{}
	if err := r.db.SelectContext(ctx, &res, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "attendance between")
	}
	return res, nil
}
