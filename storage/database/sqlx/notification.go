package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/notification"
)

const notificationColumns = `id, user_id, title, body, is_read, created_at`

type notificationRow struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

func (row notificationRow) unpack() notification.Notification {
	return notification.Notification(row)
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	query := `
INSERT INTO notification (user_id, title, body, is_read, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		notif.UserID, notif.Title, notif.Body, notif.IsRead, notif.CreatedAt.UTC(),
	).Scan(&notif.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Notification, error) {
	var fq filterQuery

	if filter != nil {
		if filter.UserID != 0 {
			fq.add("user_id = ?", filter.UserID)
		}
		if filter.IsRead != nil {
			fq.add("is_read = ?", *filter.IsRead)
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM notification%s%s`, notificationColumns, fq.clause(), orderClause(ordering, "created_at DESC, id DESC"))
	var rows []notificationRow
	if err := repo.db.SelectContext(ctx, &rows, query, fq.args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}

	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.unpack())
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id int) (notification.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notification WHERE id = $1`, notificationColumns)
	var row notificationRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "finding notification")
	}
	return row.unpack(), nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`UPDATE notification SET is_read = TRUE WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}

func (repo *notificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	if _, err := repo.db.ExecContext(ctx, `UPDATE notification SET is_read = TRUE WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}
