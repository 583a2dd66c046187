package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/registration"
	"github.com/schedulink/schedulink/core/user"
)

type registrationApi struct {
	svc    registration.Service
	usrSvc user.Service
}

func registerRegistrationAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc registration.Service,
	usrSvc user.Service,
) {
	api := registrationApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	rg := g.Group("/registrations", jwt)
	rg.POST("", api.register)
	rg.GET("", api.query)
	rg.POST("/:id/cancel", api.cancel)
	rg.POST("/:id/attended", api.markAttended, staffMiddleware())

	g.GET("/events/:id/registrations", api.queryForEvent, jwt, staffMiddleware())
}

type RegisterRequest struct {
	EventID int `json:"event_id" validate:"required"`
}

// Handlers

func (api *registrationApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reg, err := api.svc.Register(ctx.Request().Context(), data.EventID, ctxUsr.ID)
	if err != nil {
		if errors.Cause(err) == event.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, reg)
}

// query lists the caller's registrations; staff and admins see everyone's.
func (api *registrationApi) query(ctx echo.Context) error {
	filter := new(registration.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []registration.Registration{})
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

	regs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) queryForEvent(ctx echo.Context) error {
	eventID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	regs, err := api.svc.Query(ctx.Request().Context(), &registration.QueryFilter{EventID: &eventID}, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) cancel(ctx echo.Context) error {
	reg, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	// only the registrant or staff may cancel
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if reg.UserID != ctxUsr.ID && !(ctxUsr.IsStaff() || ctxUsr.IsAdmin()) {
		return errHttpForbidden
	}

	reg, err = api.svc.Cancel(ctx.Request().Context(), reg.ID)
	if err != nil {
		return errors.Wrap(err, "cancelling registration")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) markAttended(ctx echo.Context) error {
	reg, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	reg, err = api.svc.MarkAttended(ctx.Request().Context(), reg.ID)
	if err != nil {
		return errors.Wrap(err, "marking registration attended")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) getObject(ctx echo.Context) (registration.Registration, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return registration.Registration{}, errHttpNotFound
	}
	reg, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == registration.ErrNotFound {
			return registration.Registration{}, errHttpNotFound
		}
		return registration.Registration{}, errors.Wrap(err, "finding registration by ID")
	}
	return reg, nil
}
