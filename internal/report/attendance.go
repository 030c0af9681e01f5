// Package report renders attendance ledger exports.
package report

import (
	"context"
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"schoolportal/internal/apperr"
	"schoolportal/internal/attendance"
	"schoolportal/internal/clock"
)

// Sheet names in the attendance workbook.
const (
	SheetAttendance = "Attendance"
	SheetSummary    = "Summary"
)

// Ledger is the read side the exporter needs.
type Ledger interface {
	Between(ctx context.Context, from, to string) ([]attendance.ReportRow, error)
}

// Exporter writes attendance workbooks.
type Exporter struct {
	ledger Ledger
}

func NewExporter(ledger Ledger) *Exporter {
	return &Exporter{ledger: ledger}
}

// ValidateRange checks optional YYYY-MM-DD bounds.
func ValidateRange(from, to string) error {
	if from != "" && !clock.ValidDate(from) {
		return apperr.Invalid("from", "from must be a YYYY-MM-DD date")
	}
	if to != "" && !clock.ValidDate(to) {
		return apperr.Invalid("to", "to must be a YYYY-MM-DD date")
	}
	if from != "" && to != "" && from > to {
		return apperr.Invalid("from", "from must not be after to")
	}
	return nil
}

type studentTotals struct {
	name    string
	email   string
	present int
	total   int
}

// Attendance writes an XLSX workbook of the ledger rows in [from, to] to w.
// The first sheet lists every row, the second totals per student.
func (e *Exporter) Attendance(ctx context.Context, from, to string, w io.Writer) error {
	if err := ValidateRange(from, to); err != nil {
		return err
	}
	rows, err := e.ledger.Between(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAttendance); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return errors.Wrap(err, "add summary sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "header style")
	}

	if err := writeRow(f, SheetAttendance, 1, []interface{}{"Date", "Student", "Email", "Status", "Marked by"}); err != nil {
		return err
	}
	totals := map[int64]*studentTotals{}
	for i, r := range rows {
		markedBy := ""
		if r.MarkedBy != nil {
			markedBy = *r.MarkedBy
		}
		if err := writeRow(f, SheetAttendance, i+2, []interface{}{r.Date, r.StudentName, r.StudentEmail, r.Status.String(), markedBy}); err != nil {
			return err
		}
		t, ok := totals[r.StudentID]
		if !ok {
			t = &studentTotals{name: r.StudentName, email: r.StudentEmail}
			totals[r.StudentID] = t
		}
		t.total++
		if r.Status == attendance.StatusPresent {
			t.present++
		}
	}

	if err := writeRow(f, SheetSummary, 1, []interface{}{"Student", "Email", "Present", "Absent", "Total", "Percentage"}); err != nil {
		return err
	}
	list := make([]*studentTotals, 0, len(totals))
	for _, t := range totals {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].name != list[j].name {
			return list[i].name < list[j].name
		}
		return list[i].email < list[j].email
	})
	for i, t := range list {
		pct := int(math.Round(float64(t.present) / float64(t.total) * 100))
		if err := writeRow(f, SheetSummary, i+2, []interface{}{t.name, t.email, t.present, t.total - t.present, t.total, pct}); err != nil {
			return err
		}
	}

	for _, sheet := range []string{SheetAttendance, SheetSummary} {
		if err := f.SetCellStyle(sheet, "A1", "F1", bold); err != nil {
			return errors.Wrap(err, "style header")
		}
		if err := f.SetColWidth(sheet, "A", "C", 24); err != nil {
			return errors.Wrap(err, "column width")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "write %s row %d", sheet, row)
	}
	return nil
}
