// Package seed loads the demo accounts and sample records.
package seed

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"schoolportal/internal/academics"
	"schoolportal/internal/attendance"
	"schoolportal/internal/clock"
	"schoolportal/internal/store"
	"schoolportal/internal/users"
)

// Account is a fixed login created by the seeder.
type Account struct {
	Email    string
	Password string
	Role     users.Role
	Fullname string
}

// Accounts are the demo logins, one per role.
var Accounts = []Account{
	{Email: "admin@school.com", Password: "admin123", Role: users.RoleAdmin, Fullname: "Admin User"},
	{Email: "teacher@school.com", Password: "teach123", Role: users.RoleFaculty, Fullname: "Professor Smith"},
	{Email: "student@school.com", Password: "student123", Role: users.RoleStudent, Fullname: "John Doe"},
}

var sampleMarks = []academics.MarkRecord{
	{Subject: "Mathematics", Marks: 85, Date: "2026-01-10"},
	{Subject: "Physics", Marks: 78, Date: "2026-01-11"},
	{Subject: "Chemistry", Marks: 92, Date: "2026-01-12"},
	{Subject: "English", Marks: 88, Date: "2026-01-13"},
}

var sampleAssignments = []academics.Assignment{
	{Title: "Math Assignment - Calculus Problems", DueDate: "2026-01-20", Status: academics.AssignmentSubmitted},
	{Title: "Physics Lab Report - Pendulum Experiment", DueDate: "2026-01-22", Status: academics.AssignmentPending},
	{Title: "Chemistry Essay - Organic Compounds", DueDate: "2026-01-25", Status: academics.AssignmentPending},
}

// AttendanceDays is how many days of sample attendance end today.
const AttendanceDays = 7

// Run drops every table, recreates the schema and loads the sample data.
func Run(ctx context.Context, db *store.DB, clk clock.Clock) error {
	if err := db.Reset(ctx); err != nil {
		return err
	}
	return populate(ctx, db, clk)
}

// IfEmpty loads the sample data only when there are no users yet. It reports whether it seeded.
func IfEmpty(ctx context.Context, db *store.DB, clk clock.Clock) (bool, error) {
	n, err := users.NewRepository(db.Client).Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := populate(ctx, db, clk); err != nil {
		return false, err
	}
	return true, nil
}

func populate(ctx context.Context, db *store.DB, clk clock.Clock) error {
	userSvc := users.NewService(users.NewRepository(db.Client))
	created := map[users.Role]users.User{}
	for _, a := range Accounts {
		u, err := userSvc.Add(ctx, users.NewUser{
			Email:    a.Email,
			Password: a.Password,
			Role:     a.Role.String(),
			Fullname: a.Fullname,
		})
		if err != nil {
			return errors.Wrapf(err, "seed user %s", a.Email)
		}
		created[a.Role] = u
	}
	log.Printf("seed: %d users", len(created))

	student, teacher := created[users.RoleStudent], created[users.RoleFaculty]

	ledger := attendance.NewRepository(db.Client)
	for i := AttendanceDays - 1; i >= 0; i-- {
		status := attendance.StatusPresent
		if i%3 == 0 {
			status = attendance.StatusAbsent
		}
		if _, err := ledger.Upsert(ctx, student.ID, clk.DaysAgo(i), status, teacher.ID); err != nil {
			return err
		}
	}
	log.Printf("seed: %d attendance records", AttendanceDays)

	records := academics.NewRepository(db.Client)
	for _, m := range sampleMarks {
		m.StudentID = student.ID
		m.MarkedBy = &teacher.ID
		if _, err := records.InsertMark(ctx, m); err != nil {
			return err
		}
	}
	for _, a := range sampleAssignments {
		a.StudentID = student.ID
		if _, err := records.InsertAssignment(ctx, a); err != nil {
			return err
		}
	}
	log.Printf("seed: %d marks, %d assignments", len(sampleMarks), len(sampleAssignments))
	return nil
}
