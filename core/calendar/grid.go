package calendar

import "time"

const daysPerWeek = 7

// DaysInMonth returns the number of days in the given month, Gregorian
// leap years included.
func DaysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset returns the weekday (0=Sunday .. 6=Saturday) of day 1
// of the given month.
func FirstWeekdayOffset(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// MonthGrid maps the days of one month onto a 7-column, Sunday-first grid.
type MonthGrid struct {
	Year   int
	Month  time.Month
	Days   int // days in the month
	Offset int // weekday index of day 1
}

func NewMonthGrid(year int, month time.Month) MonthGrid {
	return MonthGrid{
		Year:   year,
		Month:  month,
		Days:   DaysInMonth(year, month),
		Offset: FirstWeekdayOffset(year, month),
	}
}

// DayPosition returns the zero-based slot index of calendar day `day` in
// the flattened 7-wide grid. Cell 0 is the first Sunday-aligned slot, which
// may be a blank lead-in cell when the month does not start on Sunday.
func (g MonthGrid) DayPosition(day int) int {
	return g.Offset + day - 1
}

// WeekOf returns the zero-based week row containing calendar day `day`.
func (g MonthGrid) WeekOf(day int) int {
	return g.DayPosition(day) / daysPerWeek
}

// Weeks returns the number of week rows needed to show the whole month.
func (g MonthGrid) Weeks() int {
	return g.WeekOf(g.Days) + 1
}

// WeekDayRange returns the first and last day-of-month shown in week row
// `week`, clamped to the month.
func (g MonthGrid) WeekDayRange(week int) (first, last int) {
	first = week*daysPerWeek - g.Offset + 1
	last = first + daysPerWeek - 1
	if first < 1 {
		first = 1
	}
	if last > g.Days {
		last = g.Days
	}
	return first, last
}
