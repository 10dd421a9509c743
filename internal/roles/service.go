package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name string) (Role, error)
	UpdateRole(ctx context.Context, id int64, name string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error
	ListRolePermissions(ctx context.Context, roleID int64) ([]int64, error)
	ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches one role.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("roles: name required: %w", shared.ErrBadRequest)
	}
	return s.repo.CreateRole(ctx, name)
}

// UpdateRole renames a role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("roles: name required: %w", shared.ErrBadRequest)
	}
	return s.repo.UpdateRole(ctx, id, name)
}

// DeleteRole removes a role by ID.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// AttachPermission links a permission to a role.
func (s *Service) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if permissionID == 0 {
		return fmt.Errorf("roles: permissionId required: %w", shared.ErrBadRequest)
	}
	return s.repo.AttachPermission(ctx, roleID, permissionID)
}

// DetachPermission unlinks a permission from a role.
func (s *Service) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	return s.repo.DetachPermission(ctx, roleID, permissionID)
}

// ListRolePermissions returns the permission ids attached to a role.
func (s *Service) ListRolePermissions(ctx context.Context, roleID int64) ([]int64, error) {
	return s.repo.ListRolePermissions(ctx, roleID)
}

// ReplacePermissions swaps the full permission set of a role.
func (s *Service) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return s.repo.ReplacePermissions(ctx, roleID, permissionIDs)
}
