package resource

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
	ErrNotFound        = errors.New("resource not found")
	ErrBookingNotFound = errors.New("booking not found")
	errResourceClosed  = errors.New("resource is not available for booking")
	errSlotTaken       = errors.New("resource is already booked for this time slot")
)

type (
	Repository interface {
		CreateResource(ctx context.Context, res Resource) (Resource, error)
		QueryResources(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Resource, error)
		GetResourceByID(ctx context.Context, id int) (Resource, error)
		UpdateResource(ctx context.Context, res Resource) (Resource, error)
		DeleteResourcesByID(ctx context.Context, ids ...int) error

		CreateBooking(ctx context.Context, bkg Booking) (Booking, error)
		QueryBookings(ctx context.Context, filter *BookingQueryFilter, ordering []core.DBOrdering) ([]Booking, error)
		GetBookingByID(ctx context.Context, id int) (Booking, error)
		UpdateBooking(ctx context.Context, bkg Booking) (Booking, error)
		// QueryOverlappingBookings returns bookings of the resource whose
		// [start, end) interval intersects the given one, restricted to the
		// provided statuses.
		QueryOverlappingBookings(ctx context.Context, resourceID int, start, end time.Time, statuses ...string) ([]Booking, error)
	}

	Service interface {
		Create(ctx context.Context, nr NewResource) (Resource, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Resource, error)
		GetByID(ctx context.Context, id int) (Resource, error)
		Update(ctx context.Context, id int, ur UpdateResource) (Resource, error)
		Delete(ctx context.Context, ids ...int) error

		// Book places a pending booking, rejecting slots already held by an
		// approved booking of the same resource.
		Book(ctx context.Context, nb NewBooking, userID int) (Booking, error)
		QueryBookings(ctx context.Context, filter *BookingQueryFilter, ordering []core.DBOrdering) ([]Booking, error)
		GetBookingByID(ctx context.Context, id int) (Booking, error)
		SetBookingStatus(ctx context.Context, id int, status string) (Booking, error)
		CancelBooking(ctx context.Context, id int) (Booking, error)
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

func (svc *service) Create(ctx context.Context, nr NewResource) (Resource, error) {
	now := time.Now().UTC()
	active := true
	return svc.repo.CreateResource(ctx, Resource{
		Name:      nr.Name,
		Kind:      nr.Kind,
		Capacity:  nr.Capacity,
		Location:  nr.Location,
		IsActive:  &active,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Resource, error) {
	return svc.repo.QueryResources(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Resource, error) {
	return svc.repo.GetResourceByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ur UpdateResource) (Resource, error) {
	res, err := svc.repo.GetResourceByID(ctx, id)
	if err != nil {
		return Resource{}, err
	}
	if ur.Name != "" {
		res.Name = ur.Name
	}
	if ur.Kind != "" {
		res.Kind = ur.Kind
	}
	if ur.Capacity != 0 {
		res.Capacity = ur.Capacity
	}
	if ur.Location != "" {
		res.Location = ur.Location
	}
	if ur.IsActive != nil {
		res.IsActive = ur.IsActive
	}
	res.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateResource(ctx, res)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteResourcesByID(ctx, ids...)
}

func (svc *service) Book(ctx context.Context, nb NewBooking, userID int) (Booking, error) {
	res, err := svc.repo.GetResourceByID(ctx, nb.ResourceID)
	if err != nil {
		return Booking{}, err
	}
	if res.IsActive != nil && !*res.IsActive {
		return Booking{}, core.NewValidationError(errResourceClosed)
	}

	start, end := nb.StartTime.UTC(), nb.EndTime.UTC()
	taken, err := svc.repo.QueryOverlappingBookings(ctx, nb.ResourceID, start, end, BookingApproved)
	if err != nil {
		return Booking{}, errors.Wrap(err, "checking booking overlaps")
	}
	if len(taken) > 0 {
		return Booking{}, core.NewValidationError(errSlotTaken)
	}

	now := time.Now().UTC()
	return svc.repo.CreateBooking(ctx, Booking{
		ResourceID: nb.ResourceID,
		UserID:     userID,
		EventID:    nb.EventID,
		StartTime:  start,
		EndTime:    end,
		Status:     BookingPending,
		Notes:      nb.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *service) QueryBookings(ctx context.Context, filter *BookingQueryFilter, ordering []core.DBOrdering) ([]Booking, error) {
	return svc.repo.QueryBookings(ctx, filter, ordering)
}

func (svc *service) GetBookingByID(ctx context.Context, id int) (Booking, error) {
	return svc.repo.GetBookingByID(ctx, id)
}

func (svc *service) SetBookingStatus(ctx context.Context, id int, status string) (Booking, error) {
	bkg, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if bkg.Status == status {
		return bkg, nil
	}

	// approving a slot must re-check it; another booking may have won meanwhile
	if status == BookingApproved {
		taken, err := svc.repo.QueryOverlappingBookings(ctx, bkg.ResourceID, bkg.StartTime, bkg.EndTime, BookingApproved)
		if err != nil {
			return Booking{}, errors.Wrap(err, "checking booking overlaps")
		}
		for _, other := range taken {
			if other.ID != bkg.ID {
				return Booking{}, core.NewValidationError(errSlotTaken)
			}
		}
	}

	bkg.Status = status
	bkg.UpdatedAt = time.Now().UTC()
	bkg, err = svc.repo.UpdateBooking(ctx, bkg)
	if err != nil {
		return Booking{}, err
	}

	if svc.notifSvc != nil {
		_, nErr := svc.notifSvc.Notify(ctx, bkg.UserID,
			fmt.Sprintf("Booking %s", status),
			fmt.Sprintf("Your booking #%d has been %s.", bkg.ID, status),
		)
		if nErr != nil {
			return bkg, errors.Wrap(nErr, "notifying booking owner")
		}
	}
	return bkg, nil
}

func (svc *service) CancelBooking(ctx context.Context, id int) (Booking, error) {
	bkg, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if bkg.Status == BookingCancelled {
		return bkg, nil
	}
	bkg.Status = BookingCancelled
	bkg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBooking(ctx, bkg)
}
