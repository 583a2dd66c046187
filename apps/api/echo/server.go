package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/registration"
	"github.com/schedulink/schedulink/core/report"
	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/task"
	"github.com/schedulink/schedulink/core/user"
)

type (
	Options struct {
		Address         string
		DisableReqLogs  bool
		Conf            *core.Config
		Logger          core.Logger
		Validate        *validator.Validate
		Translator      ut.Translator
		ShutdownChannel chan struct{}

		UserSvc         user.Service
		EventSvc        event.Service
		RegistrationSvc registration.Service
		ResourceSvc     resource.Service
		NotificationSvc notification.Service
		ReportSvc       report.Service
		TaskSvc         task.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := ConfigureAuth(conf)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.Validate, s.opts.Translator)
	registerEventAPI(v1, jwt, s.opts.EventSvc, s.opts.UserSvc, s.opts.Validate)
	registerCalendarAPI(v1, jwt, s.opts.EventSvc, conf)
	registerRegistrationAPI(v1, jwt, s.opts.RegistrationSvc, s.opts.UserSvc)
	registerResourceAPI(v1, jwt, s.opts.ResourceSvc, s.opts.UserSvc, s.opts.Validate)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc)
	registerReportAPI(v1, jwt, s.opts.ReportSvc, s.opts.UserSvc, s.opts.Validate)
	registerTaskAPI(v1, jwt, s.opts.TaskSvc, s.opts.UserSvc, s.opts.Validate)
}

// signalShutdown requests a graceful stop from the main goroutine.
func (s *server) signalShutdown() {
	if s.opts.ShutdownChannel != nil {
		s.opts.ShutdownChannel <- struct{}{}
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ScheduLink API!")
}
