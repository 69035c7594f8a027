package reminders

import "time"

// Reminder is one scheduled spoken notification. DueAt and CreatedAt are
// stored as epoch seconds and surfaced in local time.
type Reminder struct {
	ID        int64
	Text      string
	DueAt     time.Time
	CreatedAt time.Time
	Notified  bool
}
