package inmemdb

import (
	"context"
	"sort"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) query() []notification.Notification {
	notifs := make([]notification.Notification, 0, len(repo.db.table))
	for _, notif := range repo.db.table {
		notifs = append(notifs, *notif)
	}
	// newest first
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ID > notifs[j].ID })
	return notifs
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	notif.ID = repo.db.seq
	repo.db.table[notif.ID] = &notif
	return notif, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, filter *notification.QueryFilter, _ []core.DBOrdering) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := repo.query()
	if filter == nil {
		return notifs, nil
	}

	filtered := make([]notification.Notification, 0, len(notifs))
	for _, notif := range notifs {
		if filter.UserID != 0 && notif.UserID != filter.UserID {
			continue
		}
		if filter.IsRead != nil && notif.IsRead != *filter.IsRead {
			continue
		}
		filtered = append(filtered, notif)
	}
	return filtered, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id int) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if notif, ok := repo.db.table[id]; ok {
		return *notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkRead(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		if notif, ok := repo.db.table[id]; ok {
			notif.IsRead = true
		}
	}
	return nil
}

func (repo *notificationRepository) MarkAllRead(_ context.Context, userID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, notif := range repo.db.table {
		if notif.UserID == userID {
			notif.IsRead = true
		}
	}
	return nil
}
