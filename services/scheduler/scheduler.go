// Package schedsvc runs the background jobs of the app on cron schedules.
package schedsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/registration"
)

// reminderWindow is how far ahead of an event's start the reminder job looks.
const reminderWindow = 24 * time.Hour

type Scheduler struct {
	cron   *cron.Cron
	logger core.Logger

	nowFunc func() time.Time
}

func NewScheduler(logger core.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		nowFunc: time.Now,
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// AddEventReminders schedules a job notifying registered users of events
// starting within the next 24 hours.
func (s *Scheduler) AddEventReminders(
	spec string, evSvc event.Service, regSvc registration.Service, notifSvc notification.Service,
) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.remindUpcomingEvents(context.Background(), evSvc, regSvc, notifSvc); err != nil {
			s.logger.Error(fmt.Sprintf("sending event reminders: %v", err), err)
		}
	})
	return err
}

func (s *Scheduler) remindUpcomingEvents(
	ctx context.Context, evSvc event.Service, regSvc registration.Service, notifSvc notification.Service,
) error {
	now := s.nowFunc().UTC()
	events, err := evSvc.Query(ctx, &event.QueryFilter{
		Status: event.StatusApproved,
		From:   now,
		To:     now.Add(reminderWindow),
	}, nil)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ev.StartDate.Before(now) {
			continue
		}
		regs, err := regSvc.Query(ctx, &registration.QueryFilter{
			EventID: &ev.ID,
			Status:  registration.StatusRegistered,
		}, nil)
		if err != nil {
			return err
		}
		for _, reg := range regs {
			_, err = notifSvc.Notify(ctx, reg.UserID,
				"Upcoming event: "+ev.Name,
				fmt.Sprintf("%s starts at %s.", ev.Name, ev.StartDate.Format(time.RFC1123)),
			)
			if err != nil {
				s.logger.Error(fmt.Sprintf("notifying user %d: %v", reg.UserID, err), err)
			}
		}
	}
	return nil
}

// cronLogger adapts core.Logger to the cron logging interface.
type cronLogger struct {
	logger core.Logger
}

func (cl cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.logger.Debug(msg, keysAndValues...)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.logger.Error(msg, append([]interface{}{err}, keysAndValues...)...)
}
