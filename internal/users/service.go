package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateUsername(ctx context.Context, id int64, username string) (User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error
	ListUserGroups(ctx context.Context, userID int64) ([]int64, error)
}

// Service handles user management logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateUser applies whichever of username and password were provided.
func (s *Service) UpdateUser(ctx context.Context, id int64, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" && password == "" {
		return User{}, fmt.Errorf("users: nothing to update: %w", shared.ErrBadRequest)
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
		if err := s.repo.UpdatePasswordHash(ctx, id, string(hash)); err != nil {
			return User{}, err
		}
	}

	if username != "" {
		return s.repo.UpdateUsername(ctx, id, username)
	}
	return s.repo.GetUser(ctx, id)
}

// DeleteUser removes a user by ID.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}

// ListUserGroups returns the group ids a user belongs to.
func (s *Service) ListUserGroups(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.ListUserGroups(ctx, userID)
}
