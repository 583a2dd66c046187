package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/task"
	"github.com/schedulink/schedulink/core/user"
)

func Test_taskApi_create(t *testing.T) {
	ta := setup(t)

	student := createUser(t, ta, "Hero", "herostudent", "hero@test.cd", "pwd", []string{user.RoleStudent})
	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	assignee := createUser(t, ta, "Ana", "anastaff", "ana@test.cd", "pwd", []string{user.RoleStaff})

	tests := []httpTest{
		{
			name: "staff required", token: getToken(t, student), body: []byte(`{"title": "Book the hall"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "title required", token: getToken(t, staff), body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "create", token: getToken(t, staff),
			body:     []byte(fmt.Sprintf(`{"title": "Book the hall", "assignee_id": %d}`, assignee.ID)),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var tsk task.Task
				if err := json.Unmarshal(rec.Body.Bytes(), &tsk); err != nil {
					t.Fatalf("unmarshalling Task: %v", err)
				}
				if tsk.Status != task.StatusTodo {
					t.Errorf("new task status = %q; want %q", tsk.Status, task.StatusTodo)
				}
				if tsk.CreatedBy != staff.ID {
					t.Errorf("new task createdBy = %d; want %d", tsk.CreatedBy, staff.ID)
				}
			}
		})
	}

	// the assignee hears about it
	notifs, err := ta.notifSvc.Query(context.Background(), &notification.QueryFilter{UserID: assignee.ID}, nil)
	if err != nil {
		t.Fatalf("querying notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("len(notifs) = %d; want 1", len(notifs))
	}
	if notifs[0].Title != "New task assigned" {
		t.Errorf("notification title = %q; want %q", notifs[0].Title, "New task assigned")
	}
}

func Test_taskApi_setStatus(t *testing.T) {
	ta := setup(t)

	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	tsk, err := ta.taskSvc.Create(context.Background(), task.NewTask{Title: "Book the hall"}, staff.ID)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	path := fmt.Sprintf("/v1/tasks/%d/status", tsk.ID)

	tests := []httpTest{
		{name: "unknown status", token: getToken(t, staff), body: []byte(`{"status": "lol"}`), wantCode: http.StatusBadRequest},
		{name: "doing", token: getToken(t, staff), body: []byte(`{"status": "doing"}`), wantCode: http.StatusOK},
		{name: "done", token: getToken(t, staff), body: []byte(`{"status": "done"}`), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	tsk, err = ta.taskSvc.GetByID(context.Background(), tsk.ID)
	if err != nil {
		t.Fatalf("GetByID(): %v", err)
	}
	if tsk.Status != task.StatusDone {
		t.Errorf("task status = %q; want %q", tsk.Status, task.StatusDone)
	}
}

func Test_taskApi_destroy(t *testing.T) {
	ta := setup(t)

	staff := createUser(t, ta, "Sam", "samstaff", "sam@test.cd", "pwd", []string{user.RoleStaff})
	admin := createUser(t, ta, "Admin", "adminuser", "admin@test.cd", "pwd", []string{user.RoleAdmin})
	tsk, err := ta.taskSvc.Create(context.Background(), task.NewTask{Title: "Book the hall"}, staff.ID)
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	path := fmt.Sprintf("/v1/tasks/%d", tsk.ID)

	tests := []httpTest{
		{
			name: "admin required", token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "destroy", token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, path, tt.token)
			ta.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
		})
	}
}
