package report

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
)

var (
	// errors
	ErrNotFound         = errors.New("report not found")
	errNotPDF           = errors.New("only PDF files are accepted")
	errFileTooLarge     = errors.New("file exceeds the maximum upload size")
	pdfContentType      = "application/pdf"
	storedFileExtension = ".pdf"
)

type (
	Repository interface {
		CreateReport(ctx context.Context, rep Report) (Report, error)
		QueryReports(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error)
		GetReportByID(ctx context.Context, id int) (Report, error)
		DeleteReportsByID(ctx context.Context, ids ...int) error
	}

	Service interface {
		// Create stores the uploaded PDF on disk and records its metadata.
		Create(ctx context.Context, nr NewReport, fileName, contentType string, size int64, file io.Reader, uploadedBy int) (Report, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error)
		GetByID(ctx context.Context, id int) (Report, error)
		// FilePath resolves the on-disk location of a stored report.
		FilePath(rep Report) string
		// Delete removes the metadata rows and their files.
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		repo Repository
		conf *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{
		repo: repo,
		conf: conf,
	}
}

func (svc *service) Create(
	ctx context.Context, nr NewReport, fileName, contentType string, size int64, file io.Reader, uploadedBy int,
) (Report, error) {
	if contentType != pdfContentType {
		return Report{}, core.NewValidationError(errNotPDF, core.FieldError{Field: "file", Error: errNotPDF.Error()})
	}
	if max := svc.conf.Uploads.MaxSize; max > 0 && size > max {
		return Report{}, core.NewValidationError(errFileTooLarge, core.FieldError{Field: "file", Error: errFileTooLarge.Error()})
	}

	if err := os.MkdirAll(svc.conf.Uploads.Dir, 0o755); err != nil {
		return Report{}, errors.Wrap(err, "creating uploads dir")
	}
	storedName := uuid.New().String() + storedFileExtension
	path := filepath.Join(svc.conf.Uploads.Dir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return Report{}, errors.Wrap(err, "creating report file")
	}
	written, err := io.Copy(dst, file)
	if cErr := dst.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		os.Remove(path)
		return Report{}, errors.Wrap(err, "writing report file")
	}

	rep, err := svc.repo.CreateReport(ctx, Report{
		Title:       nr.Title,
		FileName:    fileName,
		StoredName:  storedName,
		ContentType: contentType,
		Size:        written,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		os.Remove(path)
		return Report{}, err
	}
	return rep, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Report, error) {
	return svc.repo.QueryReports(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Report, error) {
	return svc.repo.GetReportByID(ctx, id)
}

func (svc *service) FilePath(rep Report) string {
	return filepath.Join(svc.conf.Uploads.Dir, rep.StoredName)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	for _, id := range ids {
		rep, err := svc.repo.GetReportByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if rep.StoredName != "" {
			os.Remove(svc.FilePath(rep))
		}
	}
	return svc.repo.DeleteReportsByID(ctx, ids...)
}
