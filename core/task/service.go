package task

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/notification"
)

var ErrNotFound = errors.New("task not found")

type (
	Repository interface {
		CreateTask(ctx context.Context, tsk Task) (Task, error)
		QueryTasks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error)
		GetTaskByID(ctx context.Context, id int) (Task, error)
		UpdateTask(ctx context.Context, tsk Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...int) error
	}

	Service interface {
		Create(ctx context.Context, nt NewTask, createdBy int) (Task, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error)
		GetByID(ctx context.Context, id int) (Task, error)
		Update(ctx context.Context, id int, ut UpdateTask) (Task, error)
		SetStatus(ctx context.Context, id int, status string) (Task, error)
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		repo     Repository
		notifSvc notification.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notifSvc notification.Service) Service {
	return &service{
		repo:     repo,
		notifSvc: notifSvc,
	}
}

func (svc *service) Create(ctx context.Context, nt NewTask, createdBy int) (Task, error) {
	now := time.Now().UTC()
	tsk, err := svc.repo.CreateTask(ctx, Task{
		Title:       nt.Title,
		Description: nt.Description,
		AssigneeID:  nt.AssigneeID,
		Status:      StatusTodo,
		DueDate:     nt.DueDate,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Task{}, err
	}

	if svc.notifSvc != nil && tsk.AssigneeID.Valid && int(tsk.AssigneeID.Int) != createdBy {
		_, nErr := svc.notifSvc.Notify(ctx, int(tsk.AssigneeID.Int),
			"New task assigned",
			fmt.Sprintf("You have been assigned the task %q.", tsk.Title),
		)
		if nErr != nil {
			return tsk, errors.Wrap(nErr, "notifying task assignee")
		}
	}
	return tsk, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ut UpdateTask) (Task, error) {
	tsk, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}

	prevAssignee := tsk.AssigneeID
	if ut.Title != "" {
		tsk.Title = ut.Title
	}
	if ut.Description != "" {
		tsk.Description = ut.Description
	}
	if ut.AssigneeID.Valid {
		tsk.AssigneeID = ut.AssigneeID
	}
	if ut.DueDate.Valid {
		tsk.DueDate = ut.DueDate
	}
	tsk.UpdatedAt = time.Now().UTC()

	tsk, err = svc.repo.UpdateTask(ctx, tsk)
	if err != nil {
		return Task{}, err
	}

	reassigned := tsk.AssigneeID.Valid && (!prevAssignee.Valid || prevAssignee.Int != tsk.AssigneeID.Int)
	if svc.notifSvc != nil && reassigned {
		_, nErr := svc.notifSvc.Notify(ctx, int(tsk.AssigneeID.Int),
			"New task assigned",
			fmt.Sprintf("You have been assigned the task %q.", tsk.Title),
		)
		if nErr != nil {
			return tsk, errors.Wrap(nErr, "notifying task assignee")
		}
	}
	return tsk, nil
}

func (svc *service) SetStatus(ctx context.Context, id int, status string) (Task, error) {
	tsk, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if tsk.Status == status {
		return tsk, nil
	}
	tsk.Status = status
	tsk.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(ctx, tsk)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteTasksByID(ctx, ids...)
}
