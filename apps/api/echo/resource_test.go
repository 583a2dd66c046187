package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/user"
)

func Test_resourceApi_create(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	admin := createUser(t, ta, "Admin", "adminuser", "admin@test.cd", "pwd", []string{user.RoleAdmin})

	tests := []httpTest{
		{
			name: "admin required", token: getToken(t, student), body: []byte(`{"name": "Main Hall", "kind": "venue"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown kind", token: getToken(t, admin), body: []byte(`{"name": "Main Hall", "kind": "lol"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create venue", token: getToken(t, admin), body: []byte(`{"name": "Main Hall", "kind": "venue", "capacity": 350}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/resources", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_resourceApi_book(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	hall := createResource(t, ta, "Main Hall", resource.KindVenue, 350)

	day := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	slot := func(fromHour, toHour int) []byte {
		return marchallObj(t, resource.NewBooking{
			ResourceID: hall.ID,
			StartTime:  day.Add(time.Duration(fromHour) * time.Hour),
			EndTime:    day.Add(time.Duration(toHour) * time.Hour),
		})
	}

	// an approved booking holds 09:00 - 12:00
	held, err := ta.resSvc.Book(context.Background(), resource.NewBooking{
		ResourceID: hall.ID,
		StartTime:  day.Add(9 * time.Hour),
		EndTime:    day.Add(12 * time.Hour),
	}, staff.ID)
	if err != nil {
		t.Fatalf("Book(): %v", err)
	}
	if _, err = ta.resSvc.SetBookingStatus(context.Background(), held.ID, resource.BookingApproved); err != nil {
		t.Fatalf("SetBookingStatus(): %v", err)
	}

	token := getToken(t, student)
	tests := []httpTest{
		{
			name: "end must be after start", token: token, body: slot(12, 9),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "overlapping an approved booking", token: token, body: slot(11, 13),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "resource is already booked for this time slot"}),
		},
		{name: "back-to-back slots do not collide", token: token, body: slot(12, 14), wantCode: http.StatusCreated},
		{name: "free slot", token: token, body: slot(15, 17), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var bkg resource.Booking
				if err := json.Unmarshal(rec.Body.Bytes(), &bkg); err != nil {
					t.Fatalf("unmarshalling Booking: %v", err)
				}
				if bkg.Status != resource.BookingPending {
					t.Errorf("new booking status = %q; want %q", bkg.Status, resource.BookingPending)
				}
			}
		})
	}
}

func Test_resourceApi_setBookingStatus(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	admin := createUser(t, ta, "Admin", "adminuser", "admin@test.cd", "pwd", []string{user.RoleAdmin})
	hall := createResource(t, ta, "Main Hall", resource.KindVenue, 350)

	day := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	book := func(fromHour, toHour int) resource.Booking {
		bkg, err := ta.resSvc.Book(context.Background(), resource.NewBooking{
			ResourceID: hall.ID,
			StartTime:  day.Add(time.Duration(fromHour) * time.Hour),
			EndTime:    day.Add(time.Duration(toHour) * time.Hour),
		}, student.ID)
		if err != nil {
			t.Fatalf("Book(): %v", err)
		}
		return bkg
	}

	// two pending bookings race for the same slot
	first := book(9, 12)
	second := book(10, 11)

	tests := []httpTest{
		{
			name: "admin required", path: fmt.Sprintf("/v1/bookings/%d/status", first.ID),
			token: getToken(t, student), body: []byte(`{"status": "approved"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "staff cannot decide", path: fmt.Sprintf("/v1/bookings/%d/status", first.ID),
			token: getToken(t, staff), body: []byte(`{"status": "approved"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "approve first", path: fmt.Sprintf("/v1/bookings/%d/status", first.ID),
			token: getToken(t, admin), body: []byte(`{"status": "approved"}`), wantCode: http.StatusOK,
		},
		{
			name: "slot taken on approval", path: fmt.Sprintf("/v1/bookings/%d/status", second.ID),
			token: getToken(t, admin), body: []byte(`{"status": "approved"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "resource is already booked for this time slot"}),
		},
		{
			name: "reject second", path: fmt.Sprintf("/v1/bookings/%d/status", second.ID),
			token: getToken(t, admin), body: []byte(`{"status": "rejected"}`), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the owner is told about each decision
	bkg, err := ta.resSvc.GetBookingByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetBookingByID(): %v", err)
	}
	if bkg.Status != resource.BookingRejected {
		t.Errorf("booking status = %q; want %q", bkg.Status, resource.BookingRejected)
	}
}

func Test_resourceApi_cancelBooking(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	other := createUser(t, ta, "Other", "otherstudent", "other@test.cd", "pwd", []string{user.RoleStudent})
	hall := createResource(t, ta, "Main Hall", resource.KindVenue, 350)

	day := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	bkg, err := ta.resSvc.Book(context.Background(), resource.NewBooking{
		ResourceID: hall.ID,
		StartTime:  day.Add(9 * time.Hour),
		EndTime:    day.Add(12 * time.Hour),
	}, student.ID)
	if err != nil {
		t.Fatalf("Book(): %v", err)
	}
	path := fmt.Sprintf("/v1/bookings/%d/cancel", bkg.ID)

	tests := []httpTest{
		{
			name: "only the owner or staff", token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "cancel own", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	bkg, err = ta.resSvc.GetBookingByID(context.Background(), bkg.ID)
	if err != nil {
		t.Fatalf("GetBookingByID(): %v", err)
	}
	if bkg.Status != resource.BookingCancelled {
		t.Errorf("booking status = %q; want %q", bkg.Status, resource.BookingCancelled)
	}
}
