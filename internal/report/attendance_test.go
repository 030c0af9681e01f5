package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"schoolportal/internal/apperr"
	"schoolportal/internal/attendance"
	"schoolportal/internal/clock"
	"schoolportal/internal/report"
	"schoolportal/internal/seed"
	"schoolportal/internal/store/storetest"
)

func newExporter(t *testing.T) *report.Exporter {
	t.Helper()
	db := storetest.NewSQLite(t)
	clk := clock.Fixed(time.Date(2026, 1, 16, 8, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, seed.Run(context.Background(), db, clk))
	return report.NewExporter(attendance.NewRepository(db.Client))
}

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestAttendanceWorkbook(t *testing.T) {
	exp := newExporter(t)
	var buf bytes.Buffer
	require.NoError(t, exp.Attendance(context.Background(), "", "", &buf))

	rows := readRows(t, &buf, report.SheetAttendance)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Date", "Student", "Email", "Status", "Marked by"}, rows[0])
	assert.Equal(t, []string{"2026-01-10", "John Doe", "student@school.com", "absent", "Professor Smith"}, rows[1])

	summary := readRows(t, &buf, report.SheetSummary)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"John Doe", "student@school.com", "4", "3", "7", "57"}, summary[1])
}

func TestAttendanceWorkbookRange(t *testing.T) {
	exp := newExporter(t)
	var buf bytes.Buffer
	require.NoError(t, exp.Attendance(context.Background(), "2026-01-14", "2026-01-15", &buf))

	rows := readRows(t, &buf, report.SheetAttendance)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-01-14", rows[1][0])
	assert.Equal(t, "2026-01-15", rows[2][0])
}

func TestAttendanceWorkbookRejectsBadRange(t *testing.T) {
	exp := newExporter(t)
	for _, tc := range [][2]string{{"yesterday", ""}, {"", "2026-13-01"}, {"2026-01-15", "2026-01-14"}} {
		var buf bytes.Buffer
		err := exp.Attendance(context.Background(), tc[0], tc[1], &buf)
		_, ok := apperr.AsValidation(err)
		assert.True(t, ok, "range %v: got %v", tc, err)
		assert.Zero(t, buf.Len())
	}
}
