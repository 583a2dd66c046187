// Package calendar computes the month-grid layout of campus events:
// which day cells an event spans and which vertical row slot each event
// bar occupies so that overlapping events never collide visually.
//
// The package is pure: no I/O, no shared state, identical inputs always
// produce identical placements. Fetching and filtering the event list
// (e.g. by approval status) is the caller's responsibility.
package calendar

import "time"

// Event is the engine's read-only input. End is optional; a zero End means
// the event only spans its start day. Recurrence, when set, holds an RRULE
// string expanded by ExpandMonth before layout.
type Event struct {
	ID         int
	Name       string
	Start      time.Time
	End        time.Time
	Recurrence string
}

// end returns the event's effective end instant, defaulting to Start.
func (ev Event) end() time.Time {
	if ev.End.IsZero() {
		return ev.Start
	}
	return ev.End
}

// Placement is one visual bar segment: an event clipped to a single week
// band. An event whose visible range crosses week boundaries yields one
// Placement per week it touches, all sharing the same Row and Color so the
// segments read as one continuous bar.
type Placement struct {
	EventID  int    `json:"event_id"`
	Name     string `json:"name"`
	WeekRow  int    `json:"week_row"`
	Row      int    `json:"row"`
	StartDay int    `json:"start_day"`
	EndDay   int    `json:"end_day"`
	Color    string `json:"color"`
}

// dateOf strips the time-of-day, keeping the local calendar date. An event
// starting 23:00 and ending 01:00 the next day spans two full days.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
