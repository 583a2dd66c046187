package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/registration"
	"github.com/schedulink/schedulink/core/report"
	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/task"
	"github.com/schedulink/schedulink/core/user"
	emailsvc "github.com/schedulink/schedulink/services/email"
	inmemdb "github.com/schedulink/schedulink/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	app  Server
	conf *core.Config

	usrSvc   user.Service
	evSvc    event.Service
	regSvc   registration.Service
	resSvc   resource.Service
	notifSvc notification.Service
	repSvc   report.Service
	taskSvc  task.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		AppName:                   "ScheduLink",
		Env:                       "TEST",
		TestMode:                  true,
		SecretKey:                 "n0t-s0-s3cret|t3st-0nly!",
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: time.Hour,
		Server: core.ServerConfig{
			Host:                      "localhost",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 2 * time.Hour,
		},
		Uploads: core.UploadsConfig{Dir: t.TempDir(), MaxSize: 1 << 20},
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	resource.InitValidators(validate, translator)
	task.InitValidators(validate, translator)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), mailSvc, conf)
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db), usrSvc, mailSvc)
	evSvc := event.NewService(inmemdb.NewEventRepository(db), notifSvc)
	regSvc := registration.NewService(inmemdb.NewRegistrationRepository(db), evSvc)
	resSvc := resource.NewService(inmemdb.NewResourceRepository(db), notifSvc)
	repSvc := report.NewService(inmemdb.NewReportRepository(db), conf)
	taskSvc := task.NewService(inmemdb.NewTaskRepository(db), notifSvc)

	app := NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         testLogger{},
		Validate:       validate,
		Translator:     translator,

		UserSvc:         usrSvc,
		EventSvc:        evSvc,
		RegistrationSvc: regSvc,
		ResourceSvc:     resSvc,
		NotificationSvc: notifSvc,
		ReportSvc:       repSvc,
		TaskSvc:         taskSvc,
	})

	return &testApp{
		app:  app,
		conf: conf,

		usrSvc:   usrSvc,
		evSvc:    evSvc,
		regSvc:   regSvc,
		resSvc:   resSvc,
		notifSvc: notifSvc,
		repSvc:   repSvc,
		taskSvc:  taskSvc,
	}
}

// testLogger keeps test output quiet.
type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createUser(t *testing.T, ta *testApp, name, uname, email, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := ta.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createEvent(t *testing.T, ta *testApp, name, status string, start time.Time, end null.Time, createdBy int) event.Event {
	t.Helper()
	ev, err := ta.evSvc.Create(context.Background(), event.NewEvent{
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}, createdBy)
	if err != nil {
		t.Fatalf("createEvent(): %v", err)
	}
	if status != event.StatusPending {
		if ev, err = ta.evSvc.SetStatus(context.Background(), ev.ID, status); err != nil {
			t.Fatalf("createEvent(): %v", err)
		}
	}
	return ev
}

func createResource(t *testing.T, ta *testApp, name, kind string, capacity int) resource.Resource {
	t.Helper()
	res, err := ta.resSvc.Create(context.Background(), resource.NewResource{Name: name, Kind: kind, Capacity: capacity})
	if err != nil {
		t.Fatalf("createResource(): %v", err)
	}
	return res
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
