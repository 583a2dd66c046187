package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core/calendar"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/user"
)

func Test_calendarApi_monthLayout(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	token := getToken(t, student)

	// October 2026 starts on a Thursday: offset 4, 31 days, 5 week rows.
	// Oct 3 is a Saturday, so an Oct 2-4 bar crosses a week boundary.
	span := createEvent(t, ta, "Open Days", event.StatusApproved,
		time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC),
		null.TimeFrom(time.Date(2026, 10, 4, 17, 0, 0, 0, time.UTC)), student.ID)
	single := createEvent(t, ta, "Job Fair", event.StatusApproved,
		time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)
	createEvent(t, ta, "Not Yet Approved", event.StatusPending,
		time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	want := MonthLayoutResponse{
		Year:   2026,
		Month:  10,
		Days:   31,
		Offset: 4,
		Weeks:  5,
		Placements: []calendar.Placement{
			// the earlier-starting span claims row 0 and yields one segment per week
			{EventID: span.ID, Name: span.Name, WeekRow: 0, Row: 0, StartDay: 2, EndDay: 3, Color: calendar.Color(span.ID)},
			{EventID: span.ID, Name: span.Name, WeekRow: 1, Row: 0, StartDay: 4, EndDay: 4, Color: calendar.Color(span.ID)},
			{EventID: single.ID, Name: single.Name, WeekRow: 0, Row: 1, StartDay: 2, EndDay: 2, Color: calendar.Color(single.ID)},
		},
	}

	tests := []httpTest{
		{name: "auth required", path: "/v1/calendar/2026/10", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "bad month", path: "/v1/calendar/2026/13", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"month": "invalid month"}),
		},
		{
			name: "bad year", path: "/v1/calendar/lol/10", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"year": "invalid year"}),
		},
		{name: "month layout", path: "/v1/calendar/2026/10", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, want)},
		{
			name: "empty month", path: "/v1/calendar/2026/3", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, MonthLayoutResponse{Year: 2026, Month: 3, Days: 31, Offset: 0, Weeks: 5, Placements: []calendar.Placement{}}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_calendarApi_dayIndex(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	token := getToken(t, student)

	createEvent(t, ta, "Open Days", event.StatusApproved,
		time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC),
		null.TimeFrom(time.Date(2026, 10, 4, 17, 0, 0, 0, time.UTC)), student.ID)
	weekly := createEvent(t, ta, "Chess Club", event.StatusApproved,
		time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC), null.Time{}, student.ID)
	if _, err := ta.evSvc.Update(context.Background(), weekly.ID, event.UpdateEvent{
		Name:           weekly.Name,
		StartDate:      weekly.StartDate,
		RecurrenceRule: "FREQ=WEEKLY;BYDAY=WE",
	}); err != nil {
		t.Fatalf("Update(): %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2026/10/days", token)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}

	var days map[string][]DayEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &days); err != nil {
		t.Fatalf("unmarshalling day index: %v", err)
	}

	// the multi-day event shows up on each day it covers
	for _, day := range []string{"2026-10-02", "2026-10-03", "2026-10-04"} {
		if len(days[day]) == 0 {
			t.Errorf("days[%q] is empty", day)
		}
	}
	// October 2026 Wednesdays: 7, 14, 21, 28
	for _, day := range []string{"2026-10-07", "2026-10-14", "2026-10-21", "2026-10-28"} {
		if len(days[day]) != 1 || days[day][0].Name != "Chess Club" {
			t.Errorf("days[%q] = %v; want the weekly occurrence", day, days[day])
		}
	}
	// occurrences from other months never leak in
	for day := range days {
		if !strings.HasPrefix(day, "2026-10-") {
			t.Errorf("unexpected day key %q", day)
		}
	}
}

func Test_calendarApi_exportICS(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	token := getToken(t, student)

	createEvent(t, ta, "Job Fair", event.StatusApproved,
		time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar/2026/10/ics", token)
	ta.app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q; want text/calendar", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("expected an iCalendar payload")
	}
	if !strings.Contains(body, "SUMMARY:Job Fair") {
		t.Error("expected the event summary in the payload")
	}
}
