package registration

import "time"

// Statuses
const (
	StatusRegistered = "registered"
	StatusCancelled  = "cancelled"
	StatusAttended   = "attended"
)

var AllStatuses = []string{StatusRegistered, StatusCancelled, StatusAttended}

type Registration struct {
	ID        int       `json:"id"`
	EventID   int       `json:"event_id"`
	UserID    int       `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type QueryFilter struct {
	EventID *int   `query:"event_id"`
	UserID  *int   `query:"user_id"`
	Status  string `query:"status"`
}
