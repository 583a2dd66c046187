package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/registration"
)

type eventRepository struct {
	db   *eventTable
	regs *registrationTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event, regs: db.registration}
}

func (repo *eventRepository) query() []event.Event {
	events := make([]event.Event, 0, len(repo.db.table))
	for _, ev := range repo.db.table {
		events = append(events, *ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartDate.Before(events[j].StartDate)
	})
	return events
}

func (repo *eventRepository) registrationCount(eventID int) int {
	repo.regs.RLock()
	defer repo.regs.RUnlock()

	var count int
	for _, reg := range repo.regs.table {
		if reg.EventID == eventID && reg.Status != registration.StatusCancelled {
			count++
		}
	}
	return count
}

func (repo *eventRepository) CreateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	ev.ID = repo.db.seq
	repo.db.table[ev.ID] = &ev
	return ev, nil
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *event.QueryFilter, _ []core.DBOrdering) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := repo.query()
	if filter == nil {
		return events, nil
	}

	filtered := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(ev.Name), kw) &&
				!strings.Contains(strings.ToLower(ev.Description), kw) {
				continue
			}
		}
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		if filter.VenueID != nil && (!ev.VenueID.Valid || ev.VenueID.Int != *filter.VenueID) {
			continue
		}
		if filter.CreatedBy != nil && ev.CreatedBy != *filter.CreatedBy {
			continue
		}
		// a missing end date makes the event a single instant at its start
		end := ev.StartDate
		if ev.EndDate.Valid {
			end = ev.EndDate.Time
		}
		if !filter.From.IsZero() && end.Before(filter.From.UTC()) {
			continue
		}
		if !filter.To.IsZero() && ev.StartDate.After(filter.To.UTC()) {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered, nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id int) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ev, ok := repo.db.table[id]; ok {
		out := *ev
		out.RegistrationCount = repo.registrationCount(id)
		return out, nil
	}
	return event.Event{}, event.ErrNotFound
}

// UpdateEvent only saves set fields.
func (repo *eventRepository) UpdateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origEv, ok := repo.db.table[ev.ID]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	if ev.Name != "" {
		origEv.Name = ev.Name
	}
	if ev.Description != "" {
		origEv.Description = ev.Description
	}
	if ev.VenueID.Valid {
		origEv.VenueID = ev.VenueID
	}
	if ev.Status != "" {
		origEv.Status = ev.Status
	}
	if !ev.StartDate.IsZero() {
		origEv.StartDate = ev.StartDate
	}
	if ev.EndDate.Valid {
		origEv.EndDate = ev.EndDate
	}
	if ev.RecurrenceRule != "" {
		origEv.RecurrenceRule = ev.RecurrenceRule
	}
	if !ev.UpdatedAt.IsZero() {
		origEv.UpdatedAt = ev.UpdatedAt
	}
	return *origEv, nil
}

func (repo *eventRepository) DeleteEventsByID(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
