package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/user"
)

func Test_eventApi_create(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	token := getToken(t, student)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "name and start date required", token: token, body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "start_date": "this field is required"}),
		},
		{
			name:  "end date before start date",
			token: token,
			body: []byte(`{"name": "Job Fair", "start_date": "2026-10-02T09:00:00Z",` +
				` "end_date": "2026-10-01T09:00:00Z"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"end_date": "end date cannot be before start date"}),
		},
		{
			name:     "bad recurrence rule",
			token:    token,
			body:     []byte(`{"name": "Job Fair", "start_date": "2026-10-02T09:00:00Z", "recurrence_rule": "lol"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"recurrence_rule": "invalid recurrence rule"}),
		},
		{
			name:     "created pending",
			token:    token,
			body:     []byte(`{"name": "Job Fair", "start_date": "2026-10-02T09:00:00Z"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/events", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var ev event.Event
				if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
					t.Fatalf("unmarshalling Event: %v", err)
				}
				if ev.Status != event.StatusPending {
					t.Errorf("new event status = %q; want %q", ev.Status, event.StatusPending)
				}
				if ev.CreatedBy != student.ID {
					t.Errorf("new event createdBy = %d; want %d", ev.CreatedBy, student.ID)
				}
			}
		})
	}
}

func Test_eventApi_setStatus(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	admin := createUser(t, ta, "Admin", "adminuser", "admin@test.cd", "pwd", []string{user.RoleAdmin})
	ev := createEvent(t, ta, "Job Fair", event.StatusPending, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	path := fmt.Sprintf("/v1/events/%d/status", ev.ID)

	tests := []httpTest{
		{
			name: "staff required", token: getToken(t, student), body: []byte(`{"status": "approved"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown status", token: getToken(t, admin), body: []byte(`{"status": "lol"}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "staff can approve", token: getToken(t, staff), body: []byte(`{"status": "approved"}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the decision lands in the creator's notifications
	notifs, err := ta.notifSvc.Query(context.Background(), &notification.QueryFilter{UserID: student.ID}, nil)
	if err != nil {
		t.Fatalf("querying notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("len(notifs) = %d; want 1", len(notifs))
	}
	if notifs[0].Title != "Event approved" {
		t.Errorf("notification title = %q; want %q", notifs[0].Title, "Event approved")
	}
}

func Test_eventApi_query(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	token := getToken(t, student)

	fair := createEvent(t, ta, "Job Fair", event.StatusApproved, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)
	gala := createEvent(t, ta, "Gala Night", event.StatusPending, time.Date(2026, 10, 10, 19, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	tests := []httpTest{
		{name: "get all", path: "/v1/events", token: token, wantCode: http.StatusOK, wantData: marchallList(t, fair, gala)},
		{
			name: "status filter", path: "/v1/events?status=approved", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, fair),
		},
		{
			name: "search", path: "/v1/events?search=gala", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, gala),
		},
		{
			name: "date window", path: "/v1/events?from=2026-10-05T00:00:00Z&to=2026-10-20T00:00:00Z", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, gala),
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

func Test_eventApi_update(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	other := createUser(t, ta, "Other", "otherstudent", "other@test.cd", "pwd", []string{user.RoleStudent})
	admin := createUser(t, ta, "Admin", "adminuser", "admin@test.cd", "pwd", []string{user.RoleAdmin})
	ev := createEvent(t, ta, "Job Fair", event.StatusPending, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	path := fmt.Sprintf("/v1/events/%d", ev.ID)

	tests := []httpTest{
		{
			name: "only creator or admin", token: getToken(t, other), body: []byte(`{"name": "Hacked"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "creator can edit", token: getToken(t, student), body: []byte(`{"name": "Career Fair"}`), wantCode: http.StatusOK},
		{name: "admin can edit", token: getToken(t, admin), body: []byte(`{"description": "All welcome."}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	ev, err := ta.evSvc.GetByID(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("GetByID(): %v", err)
	}
	if ev.Name != "Career Fair" {
		t.Errorf("event name = %q; want %q", ev.Name, "Career Fair")
	}
	if ev.Description != "All welcome." {
		t.Errorf("event description = %q; want %q", ev.Description, "All welcome.")
	}
}
