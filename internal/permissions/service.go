package permissions

import (
	"context"
)

// RepositoryPort defines data access methods for permissions.
type RepositoryPort interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	CreatePermission(ctx context.Context, action Action, moduleID int64) (Permission, error)
	UpdatePermission(ctx context.Context, id int64, action Action, moduleID int64) (Permission, error)
	DeletePermission(ctx context.Context, id int64) error
}

// Service handles permission business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// GetPermission fetches one permission.
func (s *Service) GetPermission(ctx context.Context, id int64) (Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

// CreatePermission validates the action enum before writing.
func (s *Service) CreatePermission(ctx context.Context, rawAction string, moduleID int64) (Permission, error) {
	action, err := ParseAction(rawAction)
	if err != nil {
		return Permission{}, err
	}
	return s.repo.CreatePermission(ctx, action, moduleID)
}

// UpdatePermission validates the action enum before writing.
func (s *Service) UpdatePermission(ctx context.Context, id int64, rawAction string, moduleID int64) (Permission, error) {
	action, err := ParseAction(rawAction)
	if err != nil {
		return Permission{}, err
	}
	return s.repo.UpdatePermission(ctx, id, action, moduleID)
}

// DeletePermission removes a permission by ID.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	return s.repo.DeletePermission(ctx, id)
}
