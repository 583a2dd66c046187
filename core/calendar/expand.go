package calendar

import (
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps recurrence expansion so a malformed rule
// cannot blow up a render.
const maxOccurrencesPerEvent = 100

// ExpandMonth resolves recurring events into concrete per-month occurrences.
// Non-recurring events pass through unchanged. Each occurrence keeps the
// source event's ID and name (so color and identity stay stable) and the
// original start→end duration. The expansion window reaches one month back
// so a long occurrence starting before the visible month is still laid out.
//
// An unparseable rule degrades to the base event; layout never fails on
// bad input.
func ExpandMonth(events []Event, year int, month time.Month) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.Recurrence == "" {
			out = append(out, ev)
			continue
		}
		out = append(out, expandEvent(ev, year, month)...)
	}
	return out
}

func expandEvent(ev Event, year int, month time.Month) []Event {
	rule, err := rrule.StrToRRule(ev.Recurrence)
	if err != nil || ev.Start.IsZero() {
		return []Event{{ID: ev.ID, Name: ev.Name, Start: ev.Start, End: ev.End}}
	}
	rule.DTStart(ev.Start)

	loc := ev.Start.Location()
	windowStart := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
	windowEnd := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)

	var dur time.Duration
	if !ev.End.IsZero() && ev.End.After(ev.Start) {
		dur = ev.End.Sub(ev.Start)
	}

	times := rule.Between(windowStart, windowEnd, true)
	if len(times) > maxOccurrencesPerEvent {
		times = times[:maxOccurrencesPerEvent]
	}

	occs := make([]Event, 0, len(times))
	for _, start := range times {
		occ := Event{ID: ev.ID, Name: ev.Name, Start: start}
		if dur > 0 {
			occ.End = start.Add(dur)
		}
		occs = append(occs, occ)
	}
	return occs
}
