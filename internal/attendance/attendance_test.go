package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolportal/internal/apperr"
	"schoolportal/internal/attendance"
	"schoolportal/internal/clock"
	"schoolportal/internal/store/storetest"
	"schoolportal/internal/users"
)

type fixture struct {
	svc     *attendance.Service
	repo    *attendance.Repository
	users   *users.Service
	student users.User
	teacher users.User
}

func setup(t *testing.T, now time.Time) fixture {
	t.Helper()
	db := storetest.NewSQLite(t)
	userSvc := users.NewService(users.NewRepository(db.Client))
	repo := attendance.NewRepository(db.Client)
	f := fixture{
		svc:   attendance.NewService(repo, userSvc, clock.Fixed(now, time.UTC)),
		repo:  repo,
		users: userSvc,
	}
	f.student = add(t, userSvc, "pupil@school.com", "student", "Pupil One")
	f.teacher = add(t, userSvc, "prof@school.com", "faculty", "Prof One")
	return f
}

func add(t *testing.T, svc *users.Service, email, role, name string) users.User {
	t.Helper()
	u, err := svc.Add(context.Background(), users.NewUser{Email: email, Password: "secret123", Role: role, Fullname: name})
	require.NoError(t, err)
	return u
}

var fixedNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func TestMarkRecordsTodayAndOverwrites(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()

	rec, err := f.svc.Mark(ctx, f.student.ID, "present", f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", rec.Date)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	require.NotNil(t, rec.MarkedBy)
	assert.Equal(t, f.teacher.ID, *rec.MarkedBy)

	other := add(t, f.users, "prof2@school.com", "faculty", "Prof Two")
	again, err := f.svc.Mark(ctx, f.student.ID, "absent", other.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, attendance.StatusAbsent, again.Status)
	assert.Equal(t, other.ID, *again.MarkedBy)

	records, err := f.repo.ForDate(ctx, "2026-01-15")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusAbsent, records[0].Status)
}

func TestMarkRejectsBadInput(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()

	_, err := f.svc.Mark(ctx, f.student.ID, "late", f.teacher.ID)
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok, "expected validation error for unknown status, got %v", err)

	_, err = f.svc.Mark(ctx, f.teacher.ID, "present", f.teacher.ID)
	_, ok = apperr.AsValidation(err)
	assert.True(t, ok, "expected validation error for non-student target, got %v", err)

	_, err = f.svc.Mark(ctx, 9999, "present", f.teacher.ID)
	_, ok = apperr.AsValidation(err)
	assert.True(t, ok, "expected validation error for unknown student, got %v", err)

	records, err := f.repo.ForDate(ctx, "2026-01-15")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestConcurrentMarksLeaveOneRow(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := "present"
			if i%2 == 1 {
				status = "absent"
			}
			_, err := f.svc.Mark(ctx, f.student.ID, status, f.teacher.ID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := f.repo.ForDate(ctx, "2026-01-15")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecentReturnsLatestSevenNewestFirst(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()
	clk := clock.Fixed(fixedNow, time.UTC)

	for i := 9; i >= 0; i-- {
		status := attendance.StatusPresent
		if i == 1 || i == 4 {
			status = attendance.StatusAbsent
		}
		_, err := f.repo.Upsert(ctx, f.student.ID, clk.DaysAgo(i), status, f.teacher.ID)
		require.NoError(t, err)
	}

	records, summary, err := f.svc.Recent(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, records, attendance.RecentWindow)
	assert.Equal(t, "2026-01-15", records[0].Date)
	assert.Equal(t, "2026-01-09", records[6].Date)
	assert.Equal(t, attendance.Summary{PresentDays: 5, TotalDays: 7, Percentage: 71}, summary)
}

func TestTodayMapsOnlyMarkedStudents(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()
	second := add(t, f.users, "pupil2@school.com", "student", "Pupil Two")

	_, err := f.svc.Mark(ctx, f.student.ID, "absent", f.teacher.ID)
	require.NoError(t, err)
	_, err = f.repo.Upsert(ctx, second.ID, "2026-01-14", attendance.StatusPresent, f.teacher.ID)
	require.NoError(t, err)

	today, byStudent, err := f.svc.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", today)
	assert.Equal(t, map[int64]attendance.Status{f.student.ID: attendance.StatusAbsent}, byStudent)
}

func TestDeletingUsersCascadesAndClearsMarker(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()

	_, err := f.svc.Mark(ctx, f.student.ID, "present", f.teacher.ID)
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, f.teacher.ID, 0))
	rec, err := f.repo.Get(ctx, f.student.ID, "2026-01-15")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Nil(t, rec.MarkedBy)

	require.NoError(t, f.users.Delete(ctx, f.student.ID, 0))
	rec, err = f.repo.Get(ctx, f.student.ID, "2026-01-15")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestBetweenJoinsNamesAndFilters(t *testing.T) {
	f := setup(t, fixedNow)
	ctx := context.Background()

	for _, d := range []string{"2026-01-10", "2026-01-12", "2026-01-14"} {
		_, err := f.repo.Upsert(ctx, f.student.ID, d, attendance.StatusPresent, f.teacher.ID)
		require.NoError(t, err)
	}

	rows, err := f.repo.Between(ctx, "2026-01-11", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-01-12", rows[0].Date)
	assert.Equal(t, "Pupil One", rows[0].StudentName)
	require.NotNil(t, rows[0].MarkedBy)
	assert.Equal(t, "Prof One", *rows[0].MarkedBy)

	rows, err = f.repo.Between(ctx, "", "2026-01-10")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.repo.Between(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, attendance.Summary{}, attendance.Summarize(nil))

	recs := []attendance.Record{
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusAbsent},
		{Status: attendance.StatusPresent},
	}
	assert.Equal(t, attendance.Summary{PresentDays: 2, TotalDays: 3, Percentage: 67}, attendance.Summarize(recs))
}

func TestParseStatus(t *testing.T) {
	st, err := attendance.ParseStatus(" Present ")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, st)

	_, err = attendance.ParseStatus("")
	assert.Error(t, err)
}
