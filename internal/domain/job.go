package domain

import "time"

// Job is a posting on the board. ExternalLink is vetted through the
// safe-browsing collaborator before the job is accepted.
type Job struct {
	ID             string
	Title          string
	Description    string
	ExternalLink   string
	PostedByUserID string

	// PostedBy is populated only when the query asked for the poster.
	PostedBy *User

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SavedJob bookmarks a job for a user. (UserID, JobID) is unique.
type SavedJob struct {
	ID        string
	UserID    string
	JobID     string
	Job       *Job // populated on saved listings
	CreatedAt time.Time
}
