package groups

import "time"

// Group is a container of users that roles are assigned to.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserLink ties a user to a group.
type UserLink struct {
	GroupID   int64
	UserID    int64
	CreatedAt time.Time
}

// RoleLink ties a role to a group.
type RoleLink struct {
	GroupID   int64
	RoleID    int64
	CreatedAt time.Time
}
