package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core/report"
	"github.com/schedulink/schedulink/core/user"
)

type reportApi struct {
	svc      report.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerReportAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc report.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := reportApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	rg := g.Group("/reports", jwt)
	rg.POST("", api.create, staffMiddleware())
	rg.GET("", api.query, staffMiddleware())
	rg.GET("/:id", api.retrieve, staffMiddleware())
	rg.GET("/:id/download", api.download, staffMiddleware())
	rg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

// create accepts a multipart form with a `title` field and a `file` part.
func (api *reportApi) create(ctx echo.Context) error {
	data := report.NewReport{Title: ctx.FormValue("title")}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return errors.Wrap(err, "reading form file")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "opening form file")
	}
	defer file.Close()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rep, err := api.svc.Create(
		ctx.Request().Context(), data,
		fileHeader.Filename, fileHeader.Header.Get(echo.HeaderContentType), fileHeader.Size,
		file, ctxUsr.ID,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rep)
}

func (api *reportApi) query(ctx echo.Context) error {
	filter := new(report.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []report.Report{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	reports, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if reports == nil {
		reports = []report.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	rep, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) download(ctx echo.Context) error {
	rep, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.Attachment(api.svc.FilePath(rep), rep.FileName)
}

func (api *reportApi) destroy(ctx echo.Context) error {
	rep, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), rep.ID); err != nil {
		return errors.Wrap(err, "deleting report")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *reportApi) getObject(ctx echo.Context) (report.Report, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return report.Report{}, errHttpNotFound
	}
	rep, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == report.ErrNotFound {
			return report.Report{}, errHttpNotFound
		}
		return report.Report{}, errors.Wrap(err, "finding report by ID")
	}
	return rep, nil
}
