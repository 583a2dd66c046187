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
	"github.com/schedulink/schedulink/core/task"
)

const taskColumns = `id, title, description, assignee_id, status, due_date, created_by, created_at, updated_at`

type taskRow struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	AssigneeID  null.Int  `db:"assignee_id"`
	Status      string    `db:"status"`
	DueDate     null.Time `db:"due_date"`
	CreatedBy   int       `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row taskRow) unpack() task.Task {
	return task.Task(row)
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return task.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *taskRepository) CreateTask(ctx context.Context, tsk task.Task) (task.Task, error) {
	query := `
INSERT INTO task (title, description, assignee_id, status, due_date, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		tsk.Title, tsk.Description, tsk.AssigneeID, tsk.Status, tsk.DueDate,
		tsk.CreatedBy, tsk.CreatedAt.UTC(), tsk.UpdatedAt.UTC(),
	).Scan(&tsk.ID)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return tsk, nil
}

func (repo *taskRepository) QueryTasks(ctx context.Context, filter *task.QueryFilter, ordering []core.DBOrdering) ([]task.Task, error) {
	var fq filterQuery

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			fq.add("(title ILIKE ? OR description ILIKE ?)", val, val)
		}
		if filter.AssigneeID != nil {
			fq.add("assignee_id = ?", *filter.AssigneeID)
		}
		if filter.Status != "" {
			fq.add("status = ?", filter.Status)
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM task%s%s`, taskColumns, fq.clause(), orderClause(ordering, "id ASC"))
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.unpack())
	}
	return tasks, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id int) (task.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM task WHERE id = $1`, taskColumns)
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return task.Task{}, repo.trapNoRowsErr(err, "finding task")
	}
	return row.unpack(), nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, tsk task.Task) (task.Task, error) {
	query := fmt.Sprintf(`
UPDATE task SET title = $1, description = $2, assignee_id = $3, status = $4, due_date = $5, updated_at = $6
WHERE id = $7 RETURNING %s`, taskColumns)
	var row taskRow
	err := repo.db.GetContext(ctx, &row, query,
		tsk.Title, tsk.Description, tsk.AssigneeID, tsk.Status, tsk.DueDate, tsk.UpdatedAt.UTC(), tsk.ID)
	if err != nil {
		return task.Task{}, repo.trapNoRowsErr(err, "updating task")
	}
	return row.unpack(), nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`DELETE FROM task WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}
