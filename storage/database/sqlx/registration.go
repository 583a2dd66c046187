package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/registration"
)

const registrationColumns = `id, event_id, user_id, status, created_at, updated_at`

type registrationRow struct {
	ID        int       `db:"id"`
	EventID   int       `db:"event_id"`
	UserID    int       `db:"user_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row registrationRow) unpack() registration.Registration {
	return registration.Registration(row)
}

type registrationRepository struct {
	db *sqlx.DB
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *sqlx.DB) *registrationRepository {
	return &registrationRepository{db: db}
}

func (repo *registrationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return registration.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	query := `
INSERT INTO registration (event_id, user_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, reg.Status, reg.CreatedAt.UTC(), reg.UpdatedAt.UTC(),
	).Scan(&reg.ID)
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo *registrationRepository) QueryRegistrations(ctx context.Context, filter *registration.QueryFilter, ordering []core.DBOrdering) ([]registration.Registration, error) {
	var fq filterQuery

	if filter != nil {
		if filter.EventID != nil {
			fq.add("event_id = ?", *filter.EventID)
		}
		if filter.UserID != nil {
			fq.add("user_id = ?", *filter.UserID)
		}
		if filter.Status != "" {
			fq.add("status = ?", filter.Status)
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM registration%s%s`, registrationColumns, fq.clause(), orderClause(ordering, "id ASC"))
	var rows []registrationRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}

	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		regs = append(regs, row.unpack())
	}
	return regs, nil
}

func (repo *registrationRepository) GetRegistrationByID(ctx context.Context, id int) (registration.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registration WHERE id = $1`, registrationColumns)
	var row registrationRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return registration.Registration{}, repo.trapNoRowsErr(err, "finding registration")
	}
	return row.unpack(), nil
}

func (repo *registrationRepository) GetRegistrationByEventAndUser(ctx context.Context, eventID, userID int) (registration.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registration WHERE event_id = $1 AND user_id = $2`, registrationColumns)
	var row registrationRow
	if err := repo.db.GetContext(ctx, &row, query, eventID, userID); err != nil {
		return registration.Registration{}, repo.trapNoRowsErr(err, "finding registration")
	}
	return row.unpack(), nil
}

func (repo *registrationRepository) UpdateRegistration(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	query := fmt.Sprintf(
		`UPDATE registration SET status = $1, updated_at = $2 WHERE id = $3 RETURNING %s`,
		registrationColumns,
	)
	var row registrationRow
	if err := repo.db.GetContext(ctx, &row, query, reg.Status, reg.UpdatedAt.UTC(), reg.ID); err != nil {
		return registration.Registration{}, repo.trapNoRowsErr(err, "updating registration")
	}
	return row.unpack(), nil
}

func (repo *registrationRepository) CountByEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM registration WHERE event_id = $1 AND status <> $2`
	if err := repo.db.GetContext(ctx, &count, query, eventID, registration.StatusCancelled); err != nil {
		return 0, errors.Wrap(err, "counting registrations")
	}
	return count, nil
}
