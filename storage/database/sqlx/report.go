package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/report"
)

const reportColumns = `id, title, file_name, stored_name, content_type, size, uploaded_by, created_at`

type reportRow struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	FileName    string    `db:"file_name"`
	StoredName  string    `db:"stored_name"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	UploadedBy  int       `db:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row reportRow) unpack() report.Report {
	return report.Report(row)
}

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(ctx context.Context, rep report.Report) (report.Report, error) {
	query := `
INSERT INTO report (title, file_name, stored_name, content_type, size, uploaded_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		rep.Title, rep.FileName, rep.StoredName, rep.ContentType, rep.Size, rep.UploadedBy, rep.CreatedAt.UTC(),
	).Scan(&rep.ID)
	if err != nil {
		return report.Report{}, errors.Wrap(err, "inserting report")
	}
	return rep, nil
}

func (repo *reportRepository) QueryReports(ctx context.Context, filter *report.QueryFilter, ordering []core.DBOrdering) ([]report.Report, error) {
	var fq filterQuery

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			fq.add("(title ILIKE ? OR file_name ILIKE ?)", val, val)
		}
		if filter.UploadedBy != nil {
			fq.add("uploaded_by = ?", *filter.UploadedBy)
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM report%s%s`, reportColumns, fq.clause(), orderClause(ordering, "created_at DESC, id DESC"))
	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}

	reports := make([]report.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, row.unpack())
	}
	return reports, nil
}

func (repo *reportRepository) GetReportByID(ctx context.Context, id int) (report.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM report WHERE id = $1`, reportColumns)
	var row reportRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, errors.Wrap(err, "finding report")
	}
	return row.unpack(), nil
}

func (repo *reportRepository) DeleteReportsByID(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`DELETE FROM report WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting reports")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting reports")
	}
	return nil
}
