package calendar

import "sort"

// dayKeyLayout renders a local calendar date as the canonical YYYY-MM-DD
// bucket key. Local components are used on purpose: a UTC-based ISO
// conversion would file an evening event under the wrong day in western
// timezones.
const dayKeyLayout = "2006-01-02"

// BuildDayIndex buckets events by every local calendar day they touch,
// walking start..end one day at a time. Buckets are sorted by start time
// ascending (stable, so equal starts keep input order). The index performs
// its own date normalization; it is independent of the layout clipper.
func BuildDayIndex(events []Event) map[string][]Event {
	index := make(map[string][]Event)
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		start := dateOf(ev.Start)
		end := dateOf(ev.end())
		if end.Before(start) {
			end = start
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format(dayKeyLayout)
			index[key] = append(index[key], ev)
		}
	}
	for _, bucket := range index {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Start.Before(bucket[j].Start)
		})
	}
	return index
}
