package dashboard_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolportal/internal/academics"
	"schoolportal/internal/attendance"
	"schoolportal/internal/clock"
	"schoolportal/internal/dashboard"
	"schoolportal/internal/seed"
	"schoolportal/internal/store/storetest"
	"schoolportal/internal/users"
)

type env struct {
	reader  *dashboard.Reader
	users   *users.Service
	student users.User
}

func setup(t *testing.T) env {
	t.Helper()
	db := storetest.NewSQLite(t)
	clk := clock.Fixed(time.Date(2026, 1, 16, 8, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, seed.Run(context.Background(), db, clk))

	userSvc := users.NewService(users.NewRepository(db.Client))
	att := attendance.NewService(attendance.NewRepository(db.Client), userSvc, clk)
	acad := academics.NewService(academics.NewRepository(db.Client), userSvc, clk)
	student, err := userSvc.GetByEmail(context.Background(), "student@school.com")
	require.NoError(t, err)
	return env{reader: dashboard.NewReader(userSvc, att, acad), users: userSvc, student: student}
}

func TestStudentView(t *testing.T) {
	e := setup(t)
	view, err := e.reader.Student(context.Background(), e.student.ID)
	require.NoError(t, err)

	assert.Len(t, view.AttendanceRecords, 7)
	assert.Equal(t, 57, view.Percentage)
	assert.Equal(t, 4, view.PresentDays)
	assert.Equal(t, 7, view.TotalDays)
	require.Len(t, view.Marks, 4)
	assert.Equal(t, "2026-01-13", view.Marks[0].Date)
	assert.Equal(t, "2026-01-10", view.Marks[3].Date)
	require.Len(t, view.Assignments, 3)
	assert.Equal(t, "2026-01-20", view.Assignments[0].DueDate)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"attendanceRecords", "attendancePercentage", "presentDays", "totalDays", "marks", "assignments"} {
		assert.Contains(t, decoded, key)
	}
}

func TestStudentViewWithoutRecords(t *testing.T) {
	e := setup(t)
	other, err := e.users.Add(context.Background(), users.NewUser{Email: "new@school.com", Password: "secret123", Role: "student", Fullname: "Newcomer"})
	require.NoError(t, err)

	view, err := e.reader.Student(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Percentage)
	assert.Equal(t, 0, view.TotalDays)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"attendanceRecords":[],"attendancePercentage":0,"presentDays":0,"totalDays":0,"marks":[],"assignments":[]}`, string(raw))
}

func TestFacultyView(t *testing.T) {
	e := setup(t)
	_, err := e.users.Add(context.Background(), users.NewUser{Email: "alice@school.com", Password: "secret123", Role: "student", Fullname: "Alice Zed"})
	require.NoError(t, err)

	view, err := e.reader.Faculty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-01-16", view.Today)
	require.Len(t, view.Students, 2)
	assert.Equal(t, "Alice Zed", view.Students[0].Fullname)
	assert.Equal(t, "John Doe", view.Students[1].Fullname)
	assert.Equal(t, map[int64]attendance.Status{e.student.ID: attendance.StatusAbsent}, view.AttendanceMap)
}

func TestAdminView(t *testing.T) {
	e := setup(t)
	view, err := e.reader.Admin(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Users, 3)
	assert.Equal(t, dashboard.Stats{TotalUsers: 3, TotalStudents: 1, TotalFaculty: 1}, view.Stats)

	raw, err := json.Marshal(view.Users[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}
