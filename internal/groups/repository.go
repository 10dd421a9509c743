package groups

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

// ListGroups returns all groups.
func (r *Repository) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup fetches a group by ID.
func (r *Repository) GetGroup(ctx context.Context, id int64) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, shared.ErrNotFound
		}
		return Group{}, err
	}
	return g, nil
}

// CreateGroup inserts a new group.
func (r *Repository) CreateGroup(ctx context.Context, name string) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx, `
		INSERT INTO groups (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at`, name).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Group{}, fmt.Errorf("groups: %q: %w", name, shared.ErrDuplicate)
		}
		return Group{}, err
	}
	return g, nil
}

// UpdateGroup renames an existing group.
func (r *Repository) UpdateGroup(ctx context.Context, id int64, name string) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx, `
		UPDATE groups SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at`, id, name).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, shared.ErrNotFound
		}
		return Group{}, err
	}
	return g, nil
}

// DeleteGroup removes a group. User and role links are removed by the
// store's ON DELETE CASCADE.
func (r *Repository) DeleteGroup(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AttachUser links a user to a group. Linking the same pair twice is a
// no-op; resolution is set-based.
func (r *Repository) AttachUser(ctx context.Context, groupID, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_groups (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, group_id) DO NOTHING`, userID, groupID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("groups: group %d or user %d: %w", groupID, userID, shared.ErrReferenceNotFound)
		}
		return err
	}
	return nil
}

// DetachUser unlinks a user from a group.
func (r *Repository) DetachUser(ctx context.Context, groupID, userID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AttachRole links a role to a group.
func (r *Repository) AttachRole(ctx context.Context, groupID, roleID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO group_roles (group_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, role_id) DO NOTHING`, groupID, roleID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("groups: group %d or role %d: %w", groupID, roleID, shared.ErrReferenceNotFound)
		}
		return err
	}
	return nil
}

// DetachRole unlinks a role from a group.
func (r *Repository) DetachRole(ctx context.Context, groupID, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM group_roles WHERE group_id = $1 AND role_id = $2`, groupID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListGroupUsers returns user ids linked to a group.
func (r *Repository) ListGroupUsers(ctx context.Context, groupID int64) ([]int64, error) {
	return r.listIDs(ctx, `SELECT user_id FROM user_groups WHERE group_id = $1 ORDER BY user_id`, groupID)
}

// ListGroupRoles returns role ids linked to a group.
func (r *Repository) ListGroupRoles(ctx context.Context, groupID int64) ([]int64, error) {
	return r.listIDs(ctx, `SELECT role_id FROM group_roles WHERE group_id = $1 ORDER BY role_id`, groupID)
}

func (r *Repository) listIDs(ctx context.Context, query string, arg any) ([]int64, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
