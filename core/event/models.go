package event

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var AllStatuses = []string{StatusPending, StatusApproved, StatusRejected}

type Event struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	VenueID        null.Int  `json:"venue_id"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"start_date"`
	EndDate        null.Time `json:"end_date"`
	RecurrenceRule string    `json:"recurrence_rule,omitempty"`
	CreatedBy      int       `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC

	// RegistrationCount is only populated on detail payloads.
	RegistrationCount int `json:"registration_count,omitempty"`
}

// NewEvent contains information needed to submit a new Event. Events start
// out pending until an admin approves them.
type NewEvent struct {
	Name           string    `json:"name" validate:"required"`
	Description    string    `json:"description"`
	VenueID        null.Int  `json:"venue_id"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        null.Time `json:"end_date"`
	RecurrenceRule string    `json:"recurrence_rule"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Description = core.CleanString(ne.Description)

	if err := validate.Struct(ne); err != nil {
		return err
	}
	return validateDatesAndRule(ne.StartDate, ne.EndDate, ne.RecurrenceRule)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
// Zero-valued fields keep their current value; status changes go through SetStatus.
type UpdateEvent struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	VenueID        null.Int  `json:"venue_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        null.Time `json:"end_date"`
	RecurrenceRule string    `json:"recurrence_rule"`
}

func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate) error {
	if name := core.CleanString(ue.Name); name != "" {
		ue.Name = name
	} else {
		ue.Name = orig.Name
	}
	if desc := core.CleanString(ue.Description); desc != "" {
		ue.Description = desc
	}
	if ue.StartDate.IsZero() {
		ue.StartDate = orig.StartDate
	}
	if !ue.EndDate.Valid {
		ue.EndDate = orig.EndDate
	}
	if !ue.VenueID.Valid {
		ue.VenueID = orig.VenueID
	}
	if ue.RecurrenceRule == "" {
		ue.RecurrenceRule = orig.RecurrenceRule
	}

	if err := validate.Struct(ue); err != nil {
		return err
	}
	return validateDatesAndRule(ue.StartDate, ue.EndDate, ue.RecurrenceRule)
}

func validateDatesAndRule(start time.Time, end null.Time, rule string) error {
	if end.Valid && end.Time.Before(start) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date cannot be before start date"})
	}
	if rule != "" {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "recurrence_rule", Error: "invalid recurrence rule"})
		}
	}
	return nil
}

// UpdateEventStatus carries an approval decision.
type UpdateEventStatus struct {
	Status string `json:"status" validate:"required,eventstatus"`
}

func (us *UpdateEventStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	Search    string    `query:"search"`
	Status    string    `query:"status"`
	VenueID   *int      `query:"venue_id"`
	CreatedBy *int      `query:"created_by"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == "" && qf.VenueID == nil && qf.CreatedBy == nil &&
		qf.From.IsZero() && qf.To.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
