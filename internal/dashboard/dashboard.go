// Package dashboard assembles the per-role read views. Views are recomputed on every request.
package dashboard

import (
	"context"

	"schoolportal/internal/academics"
	"schoolportal/internal/attendance"
	"schoolportal/internal/users"
)

// StudentView is what a student sees about themself.
type StudentView struct {
	AttendanceRecords []attendance.Record `json:"attendanceRecords"`
	attendance.Summary
	Marks       []academics.MarkRecord `json:"marks"`
	Assignments []academics.Assignment `json:"assignments"`
}

// FacultyView is the roster with today's attendance.
type FacultyView struct {
	Students      []users.User                `json:"students"`
	AttendanceMap map[int64]attendance.Status `json:"attendanceMap"`
	Today         string                      `json:"today"`
}

// Stats are the admin head counts.
type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalStudents int `json:"totalStudents"`
	TotalFaculty  int `json:"totalFaculty"`
}

// AdminView lists every account.
type AdminView struct {
	Users []users.User `json:"users"`
	Stats Stats        `json:"stats"`
}

// Reader builds dashboard views from the domain services.
type Reader struct {
	users      *users.Service
	attendance *attendance.Service
	academics  *academics.Service
}

func NewReader(u *users.Service, a *attendance.Service, ac *academics.Service) *Reader {
	return &Reader{users: u, attendance: a, academics: ac}
}

// Student returns the view for studentID.
func (r *Reader) Student(ctx context.Context, studentID int64) (StudentView, error) {
	records, summary, err := r.attendance.Recent(ctx, studentID)
	if err != nil {
		return StudentView{}, err
	}
	marks, err := r.academics.Marks(ctx, studentID)
	if err != nil {
		return StudentView{}, err
	}
	assignments, err := r.academics.Assignments(ctx, studentID)
	if err != nil {
		return StudentView{}, err
	}
	return StudentView{
		AttendanceRecords: records,
		Summary:           summary,
		Marks:             marks,
		Assignments:       assignments,
	}, nil
}

// Faculty returns the roster view.
func (r *Reader) Faculty(ctx context.Context) (FacultyView, error) {
	students, err := r.users.Students(ctx)
	if err != nil {
		return FacultyView{}, err
	}
	today, byStudent, err := r.attendance.Today(ctx)
	if err != nil {
		return FacultyView{}, err
	}
	return FacultyView{Students: students, AttendanceMap: byStudent, Today: today}, nil
}

// Admin returns the user list and head counts.
func (r *Reader) Admin(ctx context.Context) (AdminView, error) {
	all, err := r.users.List(ctx)
	if err != nil {
		return AdminView{}, err
	}
	stats := Stats{TotalUsers: len(all)}
	for _, u := range all {
		switch u.Role {
		case users.RoleStudent:
			stats.TotalStudents++
		case users.RoleFaculty:
			stats.TotalFaculty++
		}
	}
	return AdminView{Users: all, Stats: stats}, nil
}
