// Package inmemdb provides map-backed repositories for tests and local runs.
package inmemdb

import (
	"sync"

	"github.com/schedulink/schedulink/core/event"
	"github.com/schedulink/schedulink/core/notification"
	"github.com/schedulink/schedulink/core/registration"
	"github.com/schedulink/schedulink/core/report"
	"github.com/schedulink/schedulink/core/resource"
	"github.com/schedulink/schedulink/core/task"
	"github.com/schedulink/schedulink/core/user"
)

type (
	DB struct {
		user         *userTable
		event        *eventTable
		registration *registrationTable
		resource     *resourceTable
		booking      *bookingTable
		notification *notificationTable
		report       *reportTable
		task         *taskTable
	}

	userTable struct {
		sync.RWMutex
		seq   int
		table map[int]*user.User
	}

	eventTable struct {
		sync.RWMutex
		seq   int
		table map[int]*event.Event
	}

	registrationTable struct {
		sync.RWMutex
		seq   int
		table map[int]*registration.Registration
	}

	resourceTable struct {
		sync.RWMutex
		seq   int
		table map[int]*resource.Resource
	}

	bookingTable struct {
		sync.RWMutex
		seq   int
		table map[int]*resource.Booking
	}

	notificationTable struct {
		sync.RWMutex
		seq   int
		table map[int]*notification.Notification
	}

	reportTable struct {
		sync.RWMutex
		seq   int
		table map[int]*report.Report
	}

	taskTable struct {
		sync.RWMutex
		seq   int
		table map[int]*task.Task
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[int]*user.User)},
		event:        &eventTable{table: make(map[int]*event.Event)},
		registration: &registrationTable{table: make(map[int]*registration.Registration)},
		resource:     &resourceTable{table: make(map[int]*resource.Resource)},
		booking:      &bookingTable{table: make(map[int]*resource.Booking)},
		notification: &notificationTable{table: make(map[int]*notification.Notification)},
		report:       &reportTable{table: make(map[int]*report.Report)},
		task:         &taskTable{table: make(map[int]*task.Task)},
	}
	return db, nil
}
