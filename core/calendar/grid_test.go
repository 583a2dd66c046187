package calendar

import (
	"testing"
	"time"
)

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func Test_DaysInMonth_gregorian(t *testing.T) {
	want := map[time.Month]int{
		time.January: 31, time.February: 28, time.March: 31, time.April: 30,
		time.May: 31, time.June: 30, time.July: 31, time.August: 31,
		time.September: 30, time.October: 31, time.November: 30, time.December: 31,
	}
	for year := 1900; year <= 2100; year++ {
		for month := time.January; month <= time.December; month++ {
			expected := want[month]
			if month == time.February && isLeap(year) {
				expected = 29
			}
			if got := DaysInMonth(year, month); got != expected {
				t.Fatalf("DaysInMonth(%d, %s) = %d; want %d", year, month, got, expected)
			}
		}
	}
}

func Test_DaysInMonth_leapYears(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2000, 29}, // divisible by 400
		{1900, 28}, // divisible by 100 but not 400
		{2024, 29},
		{2023, 28},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, time.February); got != tt.want {
			t.Errorf("DaysInMonth(%d, February) = %d; want %d", tt.year, got, tt.want)
		}
	}
}

func Test_FirstWeekdayOffset(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 1},  // Mon
		{2024, time.February, 4}, // Thu
		{2024, time.March, 5},    // Fri
		{2024, time.September, 0}, // Sun
		{2024, time.June, 6},     // Sat
	}
	for _, tt := range tests {
		if got := FirstWeekdayOffset(tt.year, tt.month); got != tt.want {
			t.Errorf("FirstWeekdayOffset(%d, %s) = %d; want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func Test_MonthGrid_positions(t *testing.T) {
	g := NewMonthGrid(2024, time.March) // starts Friday, 31 days

	if got := g.DayPosition(1); got != 5 {
		t.Errorf("DayPosition(1) = %d; want 5", got)
	}
	if got := g.WeekOf(1); got != 0 {
		t.Errorf("WeekOf(1) = %d; want 0", got)
	}
	if got := g.WeekOf(3); got != 1 { // first Sunday of the month
		t.Errorf("WeekOf(3) = %d; want 1", got)
	}
	if got := g.WeekOf(31); got != 5 {
		t.Errorf("WeekOf(31) = %d; want 5", got)
	}
	if got := g.Weeks(); got != 6 {
		t.Errorf("Weeks() = %d; want 6", got)
	}
}

func Test_MonthGrid_weekDayRange(t *testing.T) {
	g := NewMonthGrid(2024, time.March)

	tests := []struct {
		week        int
		first, last int
	}{
		{0, 1, 2},   // lead-in week: Fri 1st, Sat 2nd
		{1, 3, 9},   // full week
		{5, 31, 31}, // trailing week: Sun 31st only
	}
	for _, tt := range tests {
		first, last := g.WeekDayRange(tt.week)
		if first != tt.first || last != tt.last {
			t.Errorf("WeekDayRange(%d) = (%d, %d); want (%d, %d)", tt.week, first, last, tt.first, tt.last)
		}
	}
}
