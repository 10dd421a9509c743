package modules

import "time"

// Module represents a resource category that permissions govern.
type Module struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
