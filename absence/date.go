package absence

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day value (the only time unit this engine knows)
// =============================================================================

// Date is a plain calendar day. It deliberately carries no location or
// clock time; all accounting is whole-day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateFromMonthIndex builds a Date from a zero-based month index (0-11),
// the convention used at the presentation boundary.
func DateFromMonthIndex(year, monthIndex, day int) Date {
	return Date{Year: year, Month: time.Month(monthIndex + 1), Day: day}
}

// MonthIndex returns the zero-based month index (0-11).
func (d Date) MonthIndex() int { return int(d.Month) - 1 }

// Exists reports whether the day actually occurs in its month and year
// (rejects Feb 30, day 31 of a 30-day month, month 13, day 0, ...).
func (d Date) Exists() bool {
	if d.Month < time.January || d.Month > time.December {
		return false
	}
	return d.Day >= 1 && d.Day <= daysInMonth(d.Year, d.Month)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InYear reports whether the date falls inside the given accounting year.
func (d Date) InYear(year int) bool { return d.Year == year }

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
