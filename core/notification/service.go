package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		QueryNotifications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id int) (Notification, error)
		MarkRead(ctx context.Context, ids ...int) error
		MarkAllRead(ctx context.Context, userID int) error
	}

	Service interface {
		// Notify records a notification for the user and mails a copy, best effort.
		Notify(ctx context.Context, userID int, title, body string) (Notification, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error)
		GetByID(ctx context.Context, id int) (Notification, error)
		MarkRead(ctx context.Context, ids ...int) error
		MarkAllRead(ctx context.Context, userID int) error
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
	}
}

func (svc *service) Notify(ctx context.Context, userID int, title, body string) (Notification, error) {
	notif, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	// mail delivery is best effort; an unknown address only skips the copy
	if usr, err := svc.usrSvc.GetByID(ctx, userID); err == nil && usr.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: title,
			BodyStr: body,
		})
	}
	return notif, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

func (svc *service) MarkRead(ctx context.Context, ids ...int) error {
	return svc.repo.MarkRead(ctx, ids...)
}

func (svc *service) MarkAllRead(ctx context.Context, userID int) error {
	return svc.repo.MarkAllRead(ctx, userID)
}
