package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// RepositoryPort defines data access methods for groups.
type RepositoryPort interface {
	ListGroups(ctx context.Context) ([]Group, error)
	GetGroup(ctx context.Context, id int64) (Group, error)
	CreateGroup(ctx context.Context, name string) (Group, error)
	UpdateGroup(ctx context.Context, id int64, name string) (Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	AttachUser(ctx context.Context, groupID, userID int64) error
	DetachUser(ctx context.Context, groupID, userID int64) error
	AttachRole(ctx context.Context, groupID, roleID int64) error
	DetachRole(ctx context.Context, groupID, roleID int64) error
	ListGroupUsers(ctx context.Context, groupID int64) ([]int64, error)
	ListGroupRoles(ctx context.Context, groupID int64) ([]int64, error)
}

// Service handles group business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListGroups returns all groups.
func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	return s.repo.ListGroups(ctx)
}

// GetGroup fetches one group.
func (s *Service) GetGroup(ctx context.Context, id int64) (Group, error) {
	return s.repo.GetGroup(ctx, id)
}

// CreateGroup inserts a new group.
func (s *Service) CreateGroup(ctx context.Context, name string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("groups: name required: %w", shared.ErrBadRequest)
	}
	return s.repo.CreateGroup(ctx, name)
}

// UpdateGroup renames a group.
func (s *Service) UpdateGroup(ctx context.Context, id int64, name string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("groups: name required: %w", shared.ErrBadRequest)
	}
	return s.repo.UpdateGroup(ctx, id, name)
}

// DeleteGroup removes a group by ID.
func (s *Service) DeleteGroup(ctx context.Context, id int64) error {
	return s.repo.DeleteGroup(ctx, id)
}

// AttachUser links a user to a group.
func (s *Service) AttachUser(ctx context.Context, groupID, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("groups: userId required: %w", shared.ErrBadRequest)
	}
	return s.repo.AttachUser(ctx, groupID, userID)
}

// DetachUser unlinks a user from a group.
func (s *Service) DetachUser(ctx context.Context, groupID, userID int64) error {
	return s.repo.DetachUser(ctx, groupID, userID)
}

// AttachRole links a role to a group.
func (s *Service) AttachRole(ctx context.Context, groupID, roleID int64) error {
	if roleID == 0 {
		return fmt.Errorf("groups: roleId required: %w", shared.ErrBadRequest)
	}
	return s.repo.AttachRole(ctx, groupID, roleID)
}

// DetachRole unlinks a role from a group.
func (s *Service) DetachRole(ctx context.Context, groupID, roleID int64) error {
	return s.repo.DetachRole(ctx, groupID, roleID)
}

// ListGroupUsers returns the user ids in a group.
func (s *Service) ListGroupUsers(ctx context.Context, groupID int64) ([]int64, error) {
	return s.repo.ListGroupUsers(ctx, groupID)
}

// ListGroupRoles returns the role ids assigned to a group.
func (s *Service) ListGroupRoles(ctx context.Context, groupID int64) ([]int64, error) {
	return s.repo.ListGroupRoles(ctx, groupID)
}
