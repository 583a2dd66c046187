package calendar

import (
	"sort"
	"time"
)

// span is an event clipped to the visible month, in day-of-month terms.
// Recomputed on every layout pass, never persisted.
type span struct {
	ev       Event
	startDay int
	endDay   int
}

// clip determines the portion of ev overlapping the visible month, or
// reports false when the event misses the month entirely (or has no start).
func clip(g MonthGrid, ev Event) (span, bool) {
	if ev.Start.IsZero() {
		return span{}, false
	}

	start := dateOf(ev.Start)
	end := dateOf(ev.end())
	if end.Before(start) {
		// defensive: never trust end_date < start_date, collapse to one day
		end = start
	}

	monthStart := time.Date(g.Year, g.Month, 1, 0, 0, 0, 0, start.Location())
	monthEnd := time.Date(g.Year, g.Month, g.Days, 0, 0, 0, 0, start.Location())
	if end.Before(monthStart) || start.After(monthEnd) {
		return span{}, false
	}

	s := span{ev: ev, startDay: 1, endDay: g.Days}
	if !start.Before(monthStart) {
		s.startDay = start.Day()
	}
	if !end.After(monthEnd) {
		s.endDay = end.Day()
	}
	return s, true
}

// placed records an assigned span for subsequent conflict checks.
type placed struct {
	row       int
	startDay  int
	endDay    int
	startWeek int
	endWeek   int
}

func rangesIntersect(aStart, aEnd, bStart, bEnd int) bool {
	return aStart <= bEnd && bStart <= aEnd
}

// LayoutMonth lays out the given events on the (year, month) grid and
// returns one Placement per (event, week) bar segment. Events not touching
// the month are skipped. Rows are assigned greedy first-fit: spans are
// processed in start-time order (stable) and each takes the smallest row
// whose already-placed spans it does not collide with. Two spans collide
// only when both their week ranges and their day-of-month ranges intersect;
// the same row index is reused across different weeks.
func LayoutMonth(events []Event, year int, month time.Month) []Placement {
	g := NewMonthGrid(year, month)

	spans := make([]span, 0, len(events))
	for _, ev := range events {
		if s, ok := clip(g, ev); ok {
			spans = append(spans, s)
		}
	}

	// earlier-starting events get priority for lower rows; ties keep input order
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].ev.Start.Before(spans[j].ev.Start)
	})

	var (
		taken      []placed
		placements []Placement
	)
	for _, s := range spans {
		startWeek := g.WeekOf(s.startDay)
		endWeek := g.WeekOf(s.endDay)

		row := 0
	retry:
		for _, p := range taken {
			if p.row == row &&
				rangesIntersect(p.startWeek, p.endWeek, startWeek, endWeek) &&
				rangesIntersect(p.startDay, p.endDay, s.startDay, s.endDay) {
				row++
				goto retry
			}
		}
		taken = append(taken, placed{
			row:       row,
			startDay:  s.startDay,
			endDay:    s.endDay,
			startWeek: startWeek,
			endWeek:   endWeek,
		})

		// one bar segment per week touched, all on the same row
		for week := startWeek; week <= endWeek; week++ {
			first, last := g.WeekDayRange(week)
			seg := Placement{
				EventID:  s.ev.ID,
				Name:     s.ev.Name,
				WeekRow:  week,
				Row:      row,
				StartDay: s.startDay,
				EndDay:   s.endDay,
				Color:    Color(s.ev.ID),
			}
			if seg.StartDay < first {
				seg.StartDay = first
			}
			if seg.EndDay > last {
				seg.EndDay = last
			}
			placements = append(placements, seg)
		}
	}
	return placements
}
