package roles

import "time"

// Role represents a named bundle of permissions assignable to groups.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PermissionLink ties a permission to a role.
type PermissionLink struct {
	RoleID       int64
	PermissionID int64
	CreatedAt    time.Time
}
