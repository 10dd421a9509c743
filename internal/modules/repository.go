package modules

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-iam/gatehouse/internal/platform/db"
	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListModules returns all modules.
func (r *Repository) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM modules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var mods []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mods, nil
}

// GetModule fetches a module by ID.
func (r *Repository) GetModule(ctx context.Context, id int64) (Module, error) {
	var m Module
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at, updated_at FROM modules WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Module{}, shared.ErrNotFound
		}
		return Module{}, err
	}
	return m, nil
}

// CreateModule inserts a new module.
func (r *Repository) CreateModule(ctx context.Context, name, description string) (Module, error) {
	var m Module
	err := r.pool.QueryRow(ctx, `
		INSERT INTO modules (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`, name, description).
		Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Module{}, fmt.Errorf("modules: %q: %w", name, shared.ErrDuplicate)
		}
		return Module{}, err
	}
	return m, nil
}

// UpdateModule updates an existing module.
func (r *Repository) UpdateModule(ctx context.Context, id int64, name, description string) (Module, error) {
	var m Module
	err := r.pool.QueryRow(ctx, `
		UPDATE modules
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`, id, name, description).
		Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Module{}, shared.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return Module{}, fmt.Errorf("modules: %q: %w", name, shared.ErrDuplicate)
		}
		return Module{}, err
	}
	return m, nil
}

// DeleteModule removes a module. Its permissions are removed by the
// store's ON DELETE CASCADE.
func (r *Repository) DeleteModule(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
