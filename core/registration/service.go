package registration

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
)

var (
	// errors
	ErrNotFound          = errors.New("registration not found")
	errEventNotOpen      = errors.New("registrations are only open for approved events")
	errAlreadyRegistered = errors.New("already registered for this event")
)

type (
	Repository interface {
		CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
		QueryRegistrations(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error)
		GetRegistrationByID(ctx context.Context, id int) (Registration, error)
		GetRegistrationByEventAndUser(ctx context.Context, eventID, userID int) (Registration, error)
		UpdateRegistration(ctx context.Context, reg Registration) (Registration, error)
		CountByEvent(ctx context.Context, eventID int) (int, error)
	}

	Service interface {
		// Register signs a user up for an approved event. Re-registering a
		// cancelled registration revives it; an active duplicate is rejected.
		Register(ctx context.Context, eventID, userID int) (Registration, error)
		Cancel(ctx context.Context, id int) (Registration, error)
		MarkAttended(ctx context.Context, id int) (Registration, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error)
		GetByID(ctx context.Context, id int) (Registration, error)
		CountForEvent(ctx context.Context, eventID int) (int, error)
	}

	service struct {
		repo  Repository
		evSvc event.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, evSvc event.Service) Service {
	return &service{
		repo:  repo,
		evSvc: evSvc,
	}
}

func (svc *service) Register(ctx context.Context, eventID, userID int) (Registration, error) {
	ev, err := svc.evSvc.GetByID(ctx, eventID)
	if err != nil {
		return Registration{}, err
	}
	if ev.Status != event.StatusApproved {
		return Registration{}, core.NewValidationError(errEventNotOpen)
	}

	now := time.Now().UTC()
	existing, err := svc.repo.GetRegistrationByEventAndUser(ctx, eventID, userID)
	switch errors.Cause(err) {
	case nil:
		if existing.Status != StatusCancelled {
			return Registration{}, core.NewValidationError(errAlreadyRegistered)
		}
		existing.Status = StatusRegistered
		existing.UpdatedAt = now
		return svc.repo.UpdateRegistration(ctx, existing)
	case ErrNotFound:
		return svc.repo.CreateRegistration(ctx, Registration{
			EventID:   eventID,
			UserID:    userID,
			Status:    StatusRegistered,
			CreatedAt: now,
			UpdatedAt: now,
		})
	default:
		return Registration{}, err
	}
}

func (svc *service) Cancel(ctx context.Context, id int) (Registration, error) {
	return svc.setStatus(ctx, id, StatusCancelled)
}

func (svc *service) MarkAttended(ctx context.Context, id int) (Registration, error) {
	return svc.setStatus(ctx, id, StatusAttended)
}

func (svc *service) setStatus(ctx context.Context, id int, status string) (Registration, error) {
	reg, err := svc.repo.GetRegistrationByID(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	if reg.Status == status {
		return reg, nil
	}
	reg.Status = status
	reg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRegistration(ctx, reg)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Registration, error) {
	return svc.repo.GetRegistrationByID(ctx, id)
}

func (svc *service) CountForEvent(ctx context.Context, eventID int) (int, error) {
	return svc.repo.CountByEvent(ctx, eventID)
}
