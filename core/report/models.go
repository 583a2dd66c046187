package report

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/schedulink/schedulink/core"
)

type (
	// Report is an uploaded PDF document. The original file name is kept for
	// display; on disk the file lives under a generated StoredName so user
	// input never reaches the filesystem.
	Report struct {
		ID          int       `json:"id"`
		Title       string    `json:"title"`
		FileName    string    `json:"file_name"`
		StoredName  string    `json:"-"`
		ContentType string    `json:"content_type"`
		Size        int64     `json:"size"`
		UploadedBy  int       `json:"uploaded_by"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	NewReport struct {
		Title string `json:"title" validate:"required"`
	}

	QueryFilter struct {
		Search     string `query:"search"`
		UploadedBy *int   `query:"uploaded_by"`
	}
)

func (nr *NewReport) Validate(ctx context.Context, validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	return validate.StructCtx(ctx, nr)
}
