package event

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/notification"
)

var (
	// errors
	ErrNotFound = errors.New("event not found")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		// QueryEvents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Event.Name or Event.Description.
		// From/To select events whose date range overlaps [From, To].
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		GetEventByID(ctx context.Context, id int) (Event, error)
		UpdateEvent(ctx context.Context, ev Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...int) error
	}

	Service interface {
		Create(ctx context.Context, ne NewEvent, createdBy int) (Event, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		GetByID(ctx context.Context, id int) (Event, error)
		Update(ctx context.Context, id int, ue UpdateEvent) (Event, error)
		SetStatus(ctx context.Context, id int, status string) (Event, error)
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		repo     Repository
		notifSvc notification.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notifSvc notification.Service) Service {
	return &service{
		repo:     repo,
		notifSvc: notifSvc,
	}
}

func (svc *service) Create(ctx context.Context, ne NewEvent, createdBy int) (Event, error) {
	now := time.Now().UTC()
	ev := Event{
		Name:           ne.Name,
		Description:    ne.Description,
		VenueID:        ne.VenueID,
		Status:         StatusPending,
		StartDate:      ne.StartDate.UTC(),
		EndDate:        ne.EndDate,
		RecurrenceRule: ne.RecurrenceRule,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ev.EndDate.Valid {
		ev.EndDate.Time = ev.EndDate.Time.UTC()
	}
	return svc.repo.CreateEvent(ctx, ev)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	return svc.repo.QueryEvents(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ue UpdateEvent) (Event, error) {
	ev := Event{
		ID:             id,
		Name:           ue.Name,
		Description:    ue.Description,
		VenueID:        ue.VenueID,
		StartDate:      ue.StartDate.UTC(),
		EndDate:        ue.EndDate,
		RecurrenceRule: ue.RecurrenceRule,
		UpdatedAt:      time.Now().UTC(),
	}
	if ev.EndDate.Valid {
		ev.EndDate.Time = ev.EndDate.Time.UTC()
	}
	return svc.repo.UpdateEvent(ctx, ev)
}

func (svc *service) SetStatus(ctx context.Context, id int, status string) (Event, error) {
	ev, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if ev.Status == status {
		return ev, nil
	}

	ev.Status = status
	ev.UpdatedAt = time.Now().UTC()
	ev, err = svc.repo.UpdateEvent(ctx, ev)
	if err != nil {
		return Event{}, err
	}

	if svc.notifSvc != nil {
		_, nErr := svc.notifSvc.Notify(ctx, ev.CreatedBy,
			fmt.Sprintf("Event %s", status),
			fmt.Sprintf("Your event %q has been %s.", ev.Name, status),
		)
		if nErr != nil {
			return ev, errors.Wrap(nErr, "notifying event creator")
		}
	}
	return ev, nil
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}
