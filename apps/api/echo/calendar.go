package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/calendar"
	"github.com/schedulink/schedulink/core/event"
)

type calendarApi struct {
	evSvc event.Service
	conf  *core.Config
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, evSvc event.Service, conf *core.Config) {
	api := calendarApi{
		evSvc: evSvc,
		conf:  conf,
	}

	cg := g.Group("/calendar", jwt)
	cg.GET("/:year/:month", api.monthLayout)
	cg.GET("/:year/:month/days", api.dayIndex)
	cg.GET("/:year/:month/ics", api.exportICS)
}

type MonthLayoutResponse struct {
	Year       int                  `json:"year"`
	Month      int                  `json:"month"`
	Days       int                  `json:"days"`
	Offset     int                  `json:"offset"`
	Weeks      int                  `json:"weeks"`
	Placements []calendar.Placement `json:"placements"`
}

// Handlers

func (api *calendarApi) monthLayout(ctx echo.Context) error {
	year, month, err := bindYearMonth(ctx)
	if err != nil {
		return err
	}

	events, err := api.monthEvents(ctx, year, month)
	if err != nil {
		return err
	}

	grid := calendar.NewMonthGrid(year, month)
	placements := calendar.LayoutMonth(events, year, month)
	if placements == nil {
		placements = []calendar.Placement{}
	}

	return ctx.JSON(http.StatusOK, MonthLayoutResponse{
		Year:       year,
		Month:      int(month),
		Days:       grid.Days,
		Offset:     grid.Offset,
		Weeks:      grid.Weeks(),
		Placements: placements,
	})
}

func (api *calendarApi) dayIndex(ctx echo.Context) error {
	year, month, err := bindYearMonth(ctx)
	if err != nil {
		return err
	}

	events, err := api.monthEvents(ctx, year, month)
	if err != nil {
		return err
	}

	index := calendar.BuildDayIndex(events)

	// only keep days belonging to the requested month
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	days := make(map[string][]DayEntry, len(index))
	for day, evs := range index {
		if len(day) < len(prefix) || day[:len(prefix)] != prefix {
			continue
		}
		entries := make([]DayEntry, 0, len(evs))
		for _, ev := range evs {
			entries = append(entries, DayEntry{
				EventID: ev.ID,
				Name:    ev.Name,
				Start:   ev.Start,
				Color:   calendar.Color(ev.ID),
			})
		}
		days[day] = entries
	}
	return ctx.JSON(http.StatusOK, days)
}

func (api *calendarApi) exportICS(ctx echo.Context) error {
	year, month, err := bindYearMonth(ctx)
	if err != nil {
		return err
	}

	filter := &event.QueryFilter{Status: event.StatusApproved, To: monthEnd(year, month)}
	events, err := api.evSvc.Query(ctx.Request().Context(), filter, nil)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//" + api.conf.AppName + "//EN")

	for _, ev := range events {
		vev := cal.AddEvent(fmt.Sprintf("event-%d@%s", ev.ID, api.conf.Server.Host))
		vev.SetCreatedTime(ev.CreatedAt)
		vev.SetDtStampTime(ev.UpdatedAt)
		vev.SetStartAt(ev.StartDate)
		if ev.EndDate.Valid {
			vev.SetEndAt(ev.EndDate.Time)
		}
		vev.SetSummary(ev.Name)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.RecurrenceRule != "" {
			vev.AddRrule(ev.RecurrenceRule)
		}
	}

	name := fmt.Sprintf("attachment; filename=calendar-%04d-%02d.ics", year, month)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, name)
	return ctx.Blob(http.StatusOK, "text/calendar", []byte(cal.Serialize()))
}

// monthEvents fetches approved events visible in (year, month) and expands
// their recurrences into concrete occurrences.
func (api *calendarApi) monthEvents(ctx echo.Context, year int, month time.Month) ([]calendar.Event, error) {
	filter := &event.QueryFilter{Status: event.StatusApproved, To: monthEnd(year, month)}
	events, err := api.evSvc.Query(ctx.Request().Context(), filter, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}

	calEvents := make([]calendar.Event, 0, len(events))
	for _, ev := range events {
		ce := calendar.Event{
			ID:         ev.ID,
			Name:       ev.Name,
			Start:      ev.StartDate,
			Recurrence: ev.RecurrenceRule,
		}
		if ev.EndDate.Valid {
			ce.End = ev.EndDate.Time
		}
		calEvents = append(calEvents, ce)
	}
	return calendar.ExpandMonth(calEvents, year, month), nil
}

func monthEnd(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
}

func bindYearMonth(ctx echo.Context) (int, time.Month, error) {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil || year < 1 {
		return 0, 0, core.NewValidationError(nil, core.FieldError{Field: "year", Error: "invalid year"})
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, core.NewValidationError(nil, core.FieldError{Field: "month", Error: "invalid month"})
	}
	return year, time.Month(month), nil
}

type DayEntry struct {
	EventID int       `json:"event_id"`
	Name    string    `json:"name"`
	Start   time.Time `json:"start"`
	Color   string    `json:"color"`
}
