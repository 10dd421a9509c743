package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// RepositoryPort defines data access methods for modules.
type RepositoryPort interface {
	ListModules(ctx context.Context) ([]Module, error)
	GetModule(ctx context.Context, id int64) (Module, error)
	CreateModule(ctx context.Context, name, description string) (Module, error)
	UpdateModule(ctx context.Context, id int64, name, description string) (Module, error)
	DeleteModule(ctx context.Context, id int64) error
}

// Service handles module business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListModules returns all modules.
func (s *Service) ListModules(ctx context.Context) ([]Module, error) {
	return s.repo.ListModules(ctx)
}

// GetModule fetches one module.
func (s *Service) GetModule(ctx context.Context, id int64) (Module, error) {
	return s.repo.GetModule(ctx, id)
}

// CreateModule inserts a new module.
func (s *Service) CreateModule(ctx context.Context, name, description string) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Module{}, fmt.Errorf("modules: name required: %w", shared.ErrBadRequest)
	}
	return s.repo.CreateModule(ctx, name, strings.TrimSpace(description))
}

// UpdateModule updates an existing module.
func (s *Service) UpdateModule(ctx context.Context, id int64, name, description string) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Module{}, fmt.Errorf("modules: name required: %w", shared.ErrBadRequest)
	}
	return s.repo.UpdateModule(ctx, id, name, strings.TrimSpace(description))
}

// DeleteModule removes a module by ID.
func (s *Service) DeleteModule(ctx context.Context, id int64) error {
	return s.repo.DeleteModule(ctx, id)
}
