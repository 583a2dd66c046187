package resource

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core"
)

// Kinds
const (
	KindVenue     = "venue"
	KindEquipment = "equipment"
)

var AllKinds = []string{KindVenue, KindEquipment}

// Booking statuses
const (
	BookingPending   = "pending"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
	BookingCancelled = "cancelled"
)

var AllBookingStatuses = []string{BookingPending, BookingApproved, BookingRejected, BookingCancelled}

type (
	Resource struct {
		ID        int       `json:"id"`
		Name      string    `json:"name"`
		Kind      string    `json:"kind"`
		Capacity  int       `json:"capacity"`
		Location  string    `json:"location"`
		IsActive  *bool     `json:"is_active"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	NewResource struct {
		Name     string `json:"name" validate:"required"`
		Kind     string `json:"kind" validate:"required,resourcekind"`
		Capacity int    `json:"capacity" validate:"omitempty,min=0"`
		Location string `json:"location"`
	}

	UpdateResource struct {
		Name     string `json:"name"`
		Kind     string `json:"kind" validate:"omitempty,resourcekind"`
		Capacity int    `json:"capacity" validate:"omitempty,min=0"`
		Location string `json:"location"`
		IsActive *bool  `json:"is_active"`
	}

	// Booking reserves a resource for [StartTime, EndTime). The end instant
	// is exclusive so back-to-back bookings never collide.
	Booking struct {
		ID         int       `json:"id"`
		ResourceID int       `json:"resource_id"`
		UserID     int       `json:"user_id"`
		EventID    null.Int  `json:"event_id"`
		StartTime  time.Time `json:"start_time"`
		EndTime    time.Time `json:"end_time"`
		Status     string    `json:"status"`
		Notes      string    `json:"notes"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC
	}

	NewBooking struct {
		ResourceID int       `json:"resource_id" validate:"required"`
		EventID    null.Int  `json:"event_id"`
		StartTime  time.Time `json:"start_time" validate:"required"`
		EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
		Notes      string    `json:"notes"`
	}

	UpdateBookingStatus struct {
		Status string `json:"status" validate:"required,bookingstatus"`
	}

	QueryFilter struct {
		Search   string `query:"search"`
		Kind     string `query:"kind"`
		IsActive *bool  `query:"is_active"`
	}

	BookingQueryFilter struct {
		ResourceID *int      `query:"resource_id"`
		UserID     *int      `query:"user_id"`
		Status     string    `query:"status"`
		From       time.Time `query:"from"`
		To         time.Time `query:"to"`
	}
)

func (nr *NewResource) Validate(ctx context.Context, validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Kind = core.CleanString(nr.Kind, true)
	nr.Location = core.CleanString(nr.Location)
	return validate.StructCtx(ctx, nr)
}

func (ur *UpdateResource) Validate(ctx context.Context, validate *validator.Validate) error {
	ur.Name = core.CleanString(ur.Name)
	ur.Kind = core.CleanString(ur.Kind, true)
	ur.Location = core.CleanString(ur.Location)
	return validate.StructCtx(ctx, ur)
}

func (nb *NewBooking) Validate(ctx context.Context, validate *validator.Validate) error {
	nb.Notes = core.CleanString(nb.Notes)
	return validate.StructCtx(ctx, nb)
}

func (ubs *UpdateBookingStatus) Validate(ctx context.Context, validate *validator.Validate) error {
	ubs.Status = core.CleanString(ubs.Status, true)
	return validate.StructCtx(ctx, ubs)
}
