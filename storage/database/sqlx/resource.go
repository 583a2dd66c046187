package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/resource"
)

const (
	resourceColumns = `id, name, kind, capacity, location, is_active, created_at, updated_at`
	bookingColumns  = `id, resource_id, user_id, event_id, start_time, end_time, status, notes, created_at, updated_at`
)

type resourceRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Kind      string    `db:"kind"`
	Capacity  int       `db:"capacity"`
	Location  string    `db:"location"`
	IsActive  null.Bool `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row resourceRow) unpack() resource.Resource {
	return resource.Resource{
		ID:        row.ID,
		Name:      row.Name,
		Kind:      row.Kind,
		Capacity:  row.Capacity,
		Location:  row.Location,
		IsActive:  row.IsActive.Ptr(),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type bookingRow struct {
	ID         int       `db:"id"`
	ResourceID int       `db:"resource_id"`
	UserID     int       `db:"user_id"`
	EventID    null.Int  `db:"event_id"`
	StartTime  time.Time `db:"start_time"`
	EndTime    time.Time `db:"end_time"`
	Status     string    `db:"status"`
	Notes      string    `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row bookingRow) unpack() resource.Booking {
	return resource.Booking(row)
}

type resourceRepository struct {
	db *sqlx.DB
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *sqlx.DB) *resourceRepository {
	return &resourceRepository{db: db}
}

func (repo *resourceRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo *resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	query := `
INSERT INTO resource (name, kind, capacity, location, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		res.Name, res.Kind, res.Capacity, res.Location, null.BoolFromPtr(res.IsActive),
		res.CreatedAt.UTC(), res.UpdatedAt.UTC(),
	).Scan(&res.ID)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo *resourceRepository) QueryResources(ctx context.Context, filter *resource.QueryFilter, ordering []core.DBOrdering) ([]resource.Resource, error) {
	var fq filterQuery

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			fq.add("(name ILIKE ? OR location ILIKE ?)", val, val)
		}
		if filter.Kind != "" {
			fq.add("kind = ?", filter.Kind)
		}
		if filter.IsActive != nil {
			fq.add("is_active = ?", *filter.IsActive)
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM resource%s%s`, resourceColumns, fq.clause(), orderClause(ordering, "name ASC"))
	var rows []resourceRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}

	resources := make([]resource.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.unpack())
	}
	return resources, nil
}

func (repo *resourceRepository) GetResourceByID(ctx context.Context, id int) (resource.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resource WHERE id = $1`, resourceColumns)
	var row resourceRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return resource.Resource{}, repo.trapNoRowsErr(err, resource.ErrNotFound, "finding resource")
	}
	return row.unpack(), nil
}

func (repo *resourceRepository) UpdateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	query := fmt.Sprintf(`
UPDATE resource SET name = $1, kind = $2, capacity = $3, location = $4, is_active = $5, updated_at = $6
WHERE id = $7 RETURNING %s`, resourceColumns)
	var row resourceRow
	err := repo.db.GetContext(ctx, &row, query,
		res.Name, res.Kind, res.Capacity, res.Location, null.BoolFromPtr(res.IsActive), res.UpdatedAt.UTC(), res.ID)
	if err != nil {
		return resource.Resource{}, repo.trapNoRowsErr(err, resource.ErrNotFound, "updating resource")
	}
	return row.unpack(), nil
}

func (repo *resourceRepository) DeleteResourcesByID(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`DELETE FROM resource WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting resources")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting resources")
	}
	return nil
}

func (repo *resourceRepository) CreateBooking(ctx context.Context, bkg resource.Booking) (resource.Booking, error) {
	query := `
INSERT INTO booking (resource_id, user_id, event_id, start_time, end_time, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		bkg.ResourceID, bkg.UserID, bkg.EventID, bkg.StartTime.UTC(), bkg.EndTime.UTC(),
		bkg.Status, bkg.Notes, bkg.CreatedAt.UTC(), bkg.UpdatedAt.UTC(),
	).Scan(&bkg.ID)
	if err != nil {
		return resource.Booking{}, errors.Wrap(err, "inserting booking")
	}
	return bkg, nil
}

func (repo *resourceRepository) QueryBookings(ctx context.Context, filter *resource.BookingQueryFilter, ordering []core.DBOrdering) ([]resource.Booking, error) {
	var fq filterQuery

	if filter != nil {
		if filter.ResourceID != nil {
			fq.add("resource_id = ?", *filter.ResourceID)
		}
		if filter.UserID != nil {
			fq.add("user_id = ?", *filter.UserID)
		}
		if filter.Status != "" {
			fq.add("status = ?", filter.Status)
		}
		if !filter.From.IsZero() {
			fq.add("end_time > ?", filter.From.UTC())
		}
		if !filter.To.IsZero() {
			fq.add("start_time < ?", filter.To.UTC())
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM booking%s%s`, bookingColumns, fq.clause(), orderClause(ordering, "start_time ASC, id ASC"))
	var rows []bookingRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying bookings")
	}

	bookings := make([]resource.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.unpack())
	}
	return bookings, nil
}

func (repo *resourceRepository) GetBookingByID(ctx context.Context, id int) (resource.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM booking WHERE id = $1`, bookingColumns)
	var row bookingRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return resource.Booking{}, repo.trapNoRowsErr(err, resource.ErrBookingNotFound, "finding booking")
	}
	return row.unpack(), nil
}

func (repo *resourceRepository) UpdateBooking(ctx context.Context, bkg resource.Booking) (resource.Booking, error) {
	query := fmt.Sprintf(`
UPDATE booking SET status = $1, notes = $2, updated_at = $3
WHERE id = $4 RETURNING %s`, bookingColumns)
	var row bookingRow
	if err := repo.db.GetContext(ctx, &row, query, bkg.Status, bkg.Notes, bkg.UpdatedAt.UTC(), bkg.ID); err != nil {
		return resource.Booking{}, repo.trapNoRowsErr(err, resource.ErrBookingNotFound, "updating booking")
	}
	return row.unpack(), nil
}

// QueryOverlappingBookings matches the half-open [start, end) interval against
// stored bookings of the resource.
func (repo *resourceRepository) QueryOverlappingBookings(
	ctx context.Context, resourceID int, start, end time.Time, statuses ...string,
) ([]resource.Booking, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM booking WHERE resource_id = ? AND start_time < ? AND end_time > ?`,
		bookingColumns,
	)
	args := []interface{}{resourceID, end.UTC(), start.UTC()}
	if len(statuses) > 0 {
		query += ` AND status IN (?)`
		args = append(args, statuses)
	}

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying overlapping bookings")
	}

	var rows []bookingRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), inArgs...); err != nil {
		return nil, errors.Wrap(err, "querying overlapping bookings")
	}
	bookings := make([]resource.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.unpack())
	}
	return bookings, nil
}
