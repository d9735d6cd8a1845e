package domain

import "time"

// Role names are matched case-insensitively wherever users reference them.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// RoleUser is the default role assigned at registration when none is
// requested.
const RoleUser = "User"
