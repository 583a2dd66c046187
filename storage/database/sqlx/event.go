package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
)

const eventColumns = `id, name, description, venue_id, status, start_date, end_date, recurrence_rule, created_by, created_at, updated_at`

// registrationCountExpr counts live registrations per event.
const registrationCountExpr = `(SELECT COUNT(*) FROM registration r WHERE r.event_id = event.id AND r.status <> 'cancelled')`

type eventRow struct {
	ID                int       `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	VenueID           null.Int  `db:"venue_id"`
	Status            string    `db:"status"`
	StartDate         time.Time `db:"start_date"`
	EndDate           null.Time `db:"end_date"`
	RecurrenceRule    string    `db:"recurrence_rule"`
	CreatedBy         int       `db:"created_by"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
	RegistrationCount int       `db:"registration_count"`
}

func (row eventRow) unpack() event.Event {
	return event.Event{
		ID:                row.ID,
		Name:              row.Name,
		Description:       row.Description,
		VenueID:           row.VenueID,
		Status:            row.Status,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		RecurrenceRule:    row.RecurrenceRule,
		CreatedBy:         row.CreatedBy,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		RegistrationCount: row.RegistrationCount,
	}
}

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return event.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	query := `
INSERT INTO event (name, description, venue_id, status, start_date, end_date, recurrence_rule, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		ev.Name, ev.Description, ev.VenueID, ev.Status, ev.StartDate.UTC(), ev.EndDate,
		ev.RecurrenceRule, ev.CreatedBy, ev.CreatedAt.UTC(), ev.UpdatedAt.UTC(),
	).Scan(&ev.ID)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return ev, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter, ordering []core.DBOrdering) ([]event.Event, error) {
	var fq filterQuery

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			fq.add("(name ILIKE ? OR description ILIKE ?)", val, val)
		}
		if filter.Status != "" {
			fq.add("status = ?", filter.Status)
		}
		if filter.VenueID != nil {
			fq.add("venue_id = ?", *filter.VenueID)
		}
		if filter.CreatedBy != nil {
			fq.add("created_by = ?", *filter.CreatedBy)
		}
		// events whose date range overlaps [From, To]; a missing end date
		// makes the event a single instant at its start
		if !filter.From.IsZero() {
			fq.add("COALESCE(end_date, start_date) >= ?", filter.From.UTC())
		}
		if !filter.To.IsZero() {
			fq.add("start_date <= ?", filter.To.UTC())
		}
	}

	query := fmt.Sprintf(
		`SELECT %s, %s AS registration_count FROM event%s%s`,
		eventColumns, registrationCountExpr, fq.clause(), orderClause(ordering, "start_date ASC, id ASC"),
	)
	var rows []eventRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}

	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.unpack())
	}
	return events, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id int) (event.Event, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s AS registration_count FROM event WHERE id = $1`,
		eventColumns, registrationCountExpr,
	)
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, "finding event")
	}
	return row.unpack(), nil
}

// UpdateEvent only saves set fields.
func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	var fq filterQuery
	if ev.Name != "" {
		fq.add("name = ?", ev.Name)
	}
	if ev.Description != "" {
		fq.add("description = ?", ev.Description)
	}
	if ev.VenueID.Valid {
		fq.add("venue_id = ?", ev.VenueID)
	}
	if ev.Status != "" {
		fq.add("status = ?", ev.Status)
	}
	if !ev.StartDate.IsZero() {
		fq.add("start_date = ?", ev.StartDate.UTC())
	}
	if ev.EndDate.Valid {
		fq.add("end_date = ?", ev.EndDate)
	}
	if ev.RecurrenceRule != "" {
		fq.add("recurrence_rule = ?", ev.RecurrenceRule)
	}
	if !ev.UpdatedAt.IsZero() {
		fq.add("updated_at = ?", ev.UpdatedAt.UTC())
	}
	if len(fq.conds) == 0 {
		return repo.GetEventByID(ctx, ev.ID)
	}

	query := fmt.Sprintf(
		`UPDATE event SET %s WHERE id = %s RETURNING %s, %s AS registration_count`,
		strings.Join(fq.conds, ", "), fq.next(), eventColumns, registrationCountExpr,
	)
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, query, append(fq.args, ev.ID)...); err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, "updating event")
	}
	return row.unpack(), nil
}

func (repo *eventRepository) DeleteEventsByID(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`DELETE FROM event WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting events")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}
