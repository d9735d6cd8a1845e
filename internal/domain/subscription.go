package domain

import "time"

// Subscription opts an email address into new-job notification fan-out.
// Unsubscribing flips Active rather than deleting the row, so resubscribing
// keeps history.
type Subscription struct {
	ID        string
	UserID    string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
