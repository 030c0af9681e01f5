// Package clock decides what "today" means for the ledger and the dashboards.
package clock

import "time"

// DateLayout is the ISO date format stored in the attendance, marks and assignments tables.
const DateLayout = "2006-01-02"

// Clock reports the current time in a fixed location.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// New returns a wall clock in loc. A nil loc means UTC.
func New(loc *time.Location) Clock {
	return Clock{now: time.Now, loc: orUTC(loc)}
}

// Fixed returns a clock frozen at t.
func Fixed(t time.Time, loc *time.Location) Clock {
	return Clock{now: func() time.Time { return t }, loc: orUTC(loc)}
}

// Now returns the current time in the clock's location.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(orUTC(c.loc))
	}
	return c.now().In(orUTC(c.loc))
}

// Today returns the current date as YYYY-MM-DD.
func (c Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// DaysAgo returns the date n days before today as YYYY-MM-DD.
func (c Clock) DaysAgo(n int) string {
	return c.Now().AddDate(0, 0, -n).Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
