package permissions

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Action is the closed set of operations a permission can govern.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

var upperCaser = cases.Upper(language.Und)

// ParseAction normalizes raw input to the canonical uppercase action.
// Input is case-insensitive; anything outside the enumeration is rejected
// rather than stored.
func ParseAction(raw string) (Action, error) {
	normalized := Action(upperCaser.String(strings.TrimSpace(raw)))
	switch normalized {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return normalized, nil
	default:
		return "", fmt.Errorf("permissions: unknown action %q: %w", raw, shared.ErrBadRequest)
	}
}

// Permission represents an atomic capability on a module.
type Permission struct {
	ID         int64
	Action     Action
	ModuleID   int64
	ModuleName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
