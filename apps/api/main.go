package main

import (
	"context"
	_ "expvar"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/schedulink/schedulink/apps/api/echo"
	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/registration"
	"github.com/schedulink/schedulink/core/report"
	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/task"
	"github.com/schedulink/schedulink/core/user"
	emailsvc "github.com/schedulink/schedulink/services/email"
	logsvc "github.com/schedulink/schedulink/services/logger"
	schedsvc "github.com/schedulink/schedulink/services/scheduler"
	"github.com/schedulink/schedulink/storage/database"
	sqlxrepos "github.com/schedulink/schedulink/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)

	if err := run(conf, logger); err != nil {
		logger.Fatal("starting app", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	core.ParseEmailTemplates(conf, logger)

	// set up validators
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	resource.InitValidators(validate, translator)
	task.InitValidators(validate, translator)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		return err
	}
	sqlDB, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	if err = database.Migrate(sqlDB); err != nil {
		return err
	}
	db := sqlx.NewDb(sqlDB, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), usrSvc, mailSvc)
	evSvc := event.NewService(sqlxrepos.NewEventRepository(db), notifSvc)
	regSvc := registration.NewService(sqlxrepos.NewRegistrationRepository(db), evSvc)
	resSvc := resource.NewService(sqlxrepos.NewResourceRepository(db), notifSvc)
	repSvc := report.NewService(sqlxrepos.NewReportRepository(db), conf)
	taskSvc := task.NewService(sqlxrepos.NewTaskRepository(db), notifSvc)

	// start the debug server; /debug/pprof and /debug/vars come with the imports
	go func() {
		logger.Info("debug server listening on " + conf.Server.DebugHost)
		err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux)
		logger.Error("debug server closed", err)
	}()

	// start background jobs
	sched := schedsvc.NewScheduler(logger)
	if err = sched.AddEventReminders(conf.Scheduler.ReminderSpec, evSvc, regSvc, notifSvc); err != nil {
		return err
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	// start API server
	shutdownChan := make(chan struct{})
	app := echoapi.NewServer(&echoapi.Options{
		Address:         conf.Server.Host + ":" + conf.Server.Port,
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		ShutdownChannel: shutdownChan,

		UserSvc:         usrSvc,
		EventSvc:        evSvc,
		RegistrationSvc: regSvc,
		ResourceSvc:     resSvc,
		NotificationSvc: notifSvc,
		ReportSvc:       repSvc,
		TaskSvc:         taskSvc,
	})

	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		return err
	case <-quit:
		logger.Info("shutdown signal received")
	case <-shutdownChan:
		logger.Info("integrity issue: shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	return app.Stop(ctx)
}
