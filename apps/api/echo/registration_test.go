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
	"github.com/schedulink/schedulink/core/registration"
	"github.com/schedulink/schedulink/core/user"
)

func Test_registrationApi_register(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	token := getToken(t, student)

	approved := createEvent(t, ta, "Job Fair", event.StatusApproved, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)
	pending := createEvent(t, ta, "Gala Night", event.StatusPending, time.Date(2026, 10, 10, 19, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "event must be approved", token: token, body: marchallObj(t, RegisterRequest{EventID: pending.ID}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown event", token: token, body: marchallObj(t, RegisterRequest{EventID: 999}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "register", token: token, body: marchallObj(t, RegisterRequest{EventID: approved.ID}), wantCode: http.StatusCreated},
		{
			name: "active duplicate is rejected", token: token, body: marchallObj(t, RegisterRequest{EventID: approved.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "already registered for this event"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/registrations", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	regs, err := ta.regSvc.Query(context.Background(), &registration.QueryFilter{EventID: &approved.ID}, nil)
	if err != nil {
		t.Fatalf("querying registrations: %v", err)
	}
	if len(regs) != 1 {
		t.Errorf("len(regs) = %d; want 1", len(regs))
	}
}

func Test_registrationApi_cancel(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	other := createUser(t, ta, "Other", "otherstudent", "other@test.cd", "pwd", []string{user.RoleStudent})
	ev := createEvent(t, ta, "Job Fair", event.StatusApproved, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, student.ID)

	reg, err := ta.regSvc.Register(context.Background(), ev.ID, student.ID)
	if err != nil {
		t.Fatalf("Register(): %v", err)
	}
	path := fmt.Sprintf("/v1/registrations/%d/cancel", reg.ID)

	tests := []httpTest{
		{
			name: "only the registrant or staff", token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "cancel own", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var got registration.Registration
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("unmarshalling Registration: %v", err)
				}
				if got.Status != registration.StatusCancelled {
					t.Errorf("registration status = %q; want %q", got.Status, registration.StatusCancelled)
				}
			}
		})
	}
}

func Test_registrationApi_markAttended(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	ev := createEvent(t, ta, "Job Fair", event.StatusApproved, time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC), null.Time{}, staff.ID)

	reg, err := ta.regSvc.Register(context.Background(), ev.ID, student.ID)
	if err != nil {
		t.Fatalf("Register(): %v", err)
	}
	path := fmt.Sprintf("/v1/registrations/%d/attended", reg.ID)

	tests := []httpTest{
		{
			name: "staff required", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "mark attended", token: getToken(t, staff), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	reg, err = ta.regSvc.GetByID(context.Background(), reg.ID)
	if err != nil {
		t.Fatalf("GetByID(): %v", err)
	}
	if reg.Status != registration.StatusAttended {
		t.Errorf("registration status = %q; want %q", reg.Status, registration.StatusAttended)
	}
}
