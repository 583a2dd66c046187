package task

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core"
)

// Statuses
const (
	StatusTodo  = "todo"
	StatusDoing = "doing"
	StatusDone  = "done"
)

var AllStatuses = []string{StatusTodo, StatusDoing, StatusDone}

type (
	Task struct {
		ID          int       `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		AssigneeID  null.Int  `json:"assignee_id"`
		Status      string    `json:"status"`
		DueDate     null.Time `json:"due_date"`
		CreatedBy   int       `json:"created_by"`
		CreatedAt   time.Time `json:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"` // UTC
	}

	NewTask struct {
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		AssigneeID  null.Int  `json:"assignee_id"`
		DueDate     null.Time `json:"due_date"`
	}

	UpdateTask struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		AssigneeID  null.Int  `json:"assignee_id"`
		DueDate     null.Time `json:"due_date"`
	}

	UpdateTaskStatus struct {
		Status string `json:"status" validate:"required,taskstatus"`
	}

	QueryFilter struct {
		Search     string `query:"search"`
		AssigneeID *int   `query:"assignee_id"`
		Status     string `query:"status"`
	}
)

func (nt *NewTask) Validate(ctx context.Context, validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.StructCtx(ctx, nt)
}

func (ut *UpdateTask) Validate(ctx context.Context, validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
	return validate.StructCtx(ctx, ut)
}

func (uts *UpdateTaskStatus) Validate(ctx context.Context, validate *validator.Validate) error {
	uts.Status = core.CleanString(uts.Status, true)
	return validate.StructCtx(ctx, uts)
}
