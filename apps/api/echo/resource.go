package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/user"
)

type resourceApi struct {
	svc      resource.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerResourceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc resource.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := resourceApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	rg := g.Group("/resources", jwt)
	rg.POST("", api.create, adminMiddleware())
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update, adminMiddleware())
	rg.DELETE("/:id", api.destroy, adminMiddleware())

	bg := g.Group("/bookings", jwt)
	bg.POST("", api.book)
	bg.GET("", api.queryBookings)
	bg.GET("/:id", api.retrieveBooking)
	bg.PUT("/:id/status", api.setBookingStatus, adminMiddleware())
	bg.POST("/:id/cancel", api.cancelBooking)
}

// Resource handlers

func (api *resourceApi) create(ctx echo.Context) error {
	var data resource.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	res, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *resourceApi) query(ctx echo.Context) error {
	filter := new(resource.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []resource.Resource{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	resources, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	res, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) update(ctx echo.Context) error {
	res, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	var data resource.UpdateResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	res, err = api.svc.Update(ctx.Request().Context(), res.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	res, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), res.ID); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Booking handlers

func (api *resourceApi) book(ctx echo.Context) error {
	var data resource.NewBooking
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBooking")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	bkg, err := api.svc.Book(ctx.Request().Context(), data, ctxUsr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, bkg)
}

// queryBookings lists the caller's bookings; staff and admins see everyone's.
func (api *resourceApi) queryBookings(ctx echo.Context) error {
	filter := new(resource.BookingQueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []resource.Booking{})
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsStaff() || ctxUsr.IsAdmin()) {
		filter.UserID = &ctxUsr.ID
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	bookings, err := api.svc.QueryBookings(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying bookings")
	}
	if bookings == nil {
		bookings = []resource.Booking{}
	}
	return ctx.JSON(http.StatusOK, bookings)
}

func (api *resourceApi) retrieveBooking(ctx echo.Context) error {
	bkg, err := api.getBooking(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if bkg.UserID != ctxUsr.ID && !(ctxUsr.IsStaff() || ctxUsr.IsAdmin()) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, bkg)
}

func (api *resourceApi) setBookingStatus(ctx echo.Context) error {
	bkg, err := api.getBooking(ctx)
	if err != nil {
		return err
	}

	var data resource.UpdateBookingStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBookingStatus")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	bkg, err = api.svc.SetBookingStatus(ctx.Request().Context(), bkg.ID, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, bkg)
}

func (api *resourceApi) cancelBooking(ctx echo.Context) error {
	bkg, err := api.getBooking(ctx)
	if err != nil {
		return err
	}

	// only the booking owner or staff may cancel
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if bkg.UserID != ctxUsr.ID && !(ctxUsr.IsStaff() || ctxUsr.IsAdmin()) {
		return errHttpForbidden
	}

	bkg, err = api.svc.CancelBooking(ctx.Request().Context(), bkg.ID)
	if err != nil {
		return errors.Wrap(err, "cancelling booking")
	}
	return ctx.JSON(http.StatusOK, bkg)
}

func (api *resourceApi) getObject(ctx echo.Context) (resource.Resource, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return resource.Resource{}, errHttpNotFound
	}
	res, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == resource.ErrNotFound {
			return resource.Resource{}, errHttpNotFound
		}
		return resource.Resource{}, errors.Wrap(err, "finding resource by ID")
	}
	return res, nil
}

func (api *resourceApi) getBooking(ctx echo.Context) (resource.Booking, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return resource.Booking{}, errHttpNotFound
	}
	bkg, err := api.svc.GetBookingByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == resource.ErrBookingNotFound {
			return resource.Booking{}, errHttpNotFound
		}
		return resource.Booking{}, errors.Wrap(err, "finding booking by ID")
	}
	return bkg, nil
}
