package attendance

import (
	"math"
	"strings"

	"schoolportal/internal/apperr"
)

// Status is the daily attendance outcome for a student.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// ParseStatus accepts only present or absent.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPresent, StatusAbsent:
		return st, nil
	}
	return "", apperr.Invalid("status", "status must be present or absent")
}

func (s Status) String() string { return string(s) }

// Record is one ledger row; (StudentID, Date) is unique.
type Record struct {
	ID        int64  `db:"id" json:"id"`
	StudentID int64  `db:"student_id" json:"student_id"`
	Date      string `db:"date" json:"date"`
	Status    Status `db:"status" json:"status"`
	MarkedBy  *int64 `db:"marked_by" json:"marked_by,omitempty"`
}

// Summary counts present days over a set of records.
type Summary struct {
	PresentDays int `json:"presentDays"`
	TotalDays   int `json:"totalDays"`
	Percentage  int `json:"attendancePercentage"`
}

// Summarize returns present/total counts and round(present/total*100), or 0 for no records.
func Summarize(records []Record) Summary {
	s := Summary{TotalDays: len(records)}
	for _, r := range records {
		if r.Status == StatusPresent {
			s.PresentDays++
		}
	}
	if s.TotalDays > 0 {
		s.Percentage = int(math.Round(float64(s.PresentDays) / float64(s.TotalDays) * 100))
	}
	return s
}

// ByStudent folds records into student id -> status. Later records win.
func ByStudent(records []Record) map[int64]Status {
	out := make(map[int64]Status, len(records))
	for _, r := range records {
		out[r.StudentID] = r.Status
	}
	return out
}
