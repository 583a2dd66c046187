package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/user"
)

type eventApi struct {
	svc      event.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerEventAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc event.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := eventApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	eg := g.Group("/events", jwt)
	eg.POST("", api.create)
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.PUT("/:id/status", api.setStatus, staffMiddleware())
	eg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ev, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *eventApi) query(ctx echo.Context) error {
	filter := new(event.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []event.Event{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	events, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	ev, err := api.getObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) update(ctx echo.Context) error {
	ev, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	// only the creator or an admin may edit
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if ev.CreatedBy != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	var data event.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(ev, api.validate); err != nil {
		return err
	}

	ev, err = api.svc.Update(ctx.Request().Context(), ev.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) setStatus(ctx echo.Context) error {
	ev, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	var data event.UpdateEventStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEventStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ev, err = api.svc.SetStatus(ctx.Request().Context(), ev.ID, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting event status")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	ev, err := api.getObject(ctx)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if ev.CreatedBy != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), ev.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) getObject(ctx echo.Context) (event.Event, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return event.Event{}, errHttpNotFound
	}
	ev, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == event.ErrNotFound {
			return event.Event{}, errHttpNotFound
		}
		return event.Event{}, errors.Wrap(err, "finding event by ID")
	}
	return ev, nil
}
