package permissions

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

// ListPermissions returns all permissions with their owning module name.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.action, p.module_id, m.name, p.created_at, p.updated_at
		FROM permissions p
		JOIN modules m ON m.id = p.module_id
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Action, &p.ModuleID, &p.ModuleName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// GetPermission fetches a permission by ID.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.action, p.module_id, m.name, p.created_at, p.updated_at
		FROM permissions p
		JOIN modules m ON m.id = p.module_id
		WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Action, &p.ModuleID, &p.ModuleName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

// CreatePermission inserts a permission referencing an existing module.
func (r *Repository) CreatePermission(ctx context.Context, action Action, moduleID int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (action, module_id)
		VALUES ($1, $2)
		RETURNING id, action, module_id, created_at, updated_at`, string(action), moduleID).
		Scan(&p.ID, &p.Action, &p.ModuleID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Permission{}, fmt.Errorf("permissions: module %d: %w", moduleID, shared.ErrReferenceNotFound)
		}
		return Permission{}, err
	}
	return p, nil
}

// UpdatePermission updates action and owning module of a permission.
func (r *Repository) UpdatePermission(ctx context.Context, id int64, action Action, moduleID int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `
		UPDATE permissions
		SET action = $2, module_id = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, action, module_id, created_at, updated_at`, id, string(action), moduleID).
		Scan(&p.ID, &p.Action, &p.ModuleID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		if db.IsForeignKeyViolation(err) {
			return Permission{}, fmt.Errorf("permissions: module %d: %w", moduleID, shared.ErrReferenceNotFound)
		}
		return Permission{}, err
	}
	return p, nil
}

// DeletePermission removes a permission. Role links are removed by the
// store's ON DELETE CASCADE so the resolver never sees dangling edges.
func (r *Repository) DeletePermission(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
