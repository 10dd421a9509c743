package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// PermissionDetail is the payload of one permission record.
type PermissionDetail struct {
	Action   string
	ModuleID int64
}

// GraphStore exposes the per-level traversal reads the resolver needs.
// Implementations must support concurrent readers; the resolver fans the
// per-level lookups out in parallel.
type GraphStore interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	GroupsOfUser(ctx context.Context, userID int64) ([]int64, error)
	RolesOfGroup(ctx context.Context, groupID int64) ([]int64, error)
	PermissionsOfRole(ctx context.Context, roleID int64) ([]int64, error)
	PermissionDetail(ctx context.Context, permissionID int64) (PermissionDetail, error)
	ModuleName(ctx context.Context, moduleID int64) (string, error)
}

// PGStore implements GraphStore against PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// wrapStoreErr classifies infrastructure failures as retryable without
// masking caller cancellation.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("access: %s: %w: %v", op, shared.ErrStoreUnavailable, err)
}

// UserExists reports whether the user row is present.
func (s *PGStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, wrapStoreErr("user exists", err)
	}
	return exists, nil
}

// GroupsOfUser returns the group ids linked to a user.
func (s *PGStore) GroupsOfUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.listIDs(ctx, "groups of user", `SELECT group_id FROM user_groups WHERE user_id = $1`, userID)
}

// RolesOfGroup returns the role ids linked to a group.
func (s *PGStore) RolesOfGroup(ctx context.Context, groupID int64) ([]int64, error) {
	return s.listIDs(ctx, "roles of group", `SELECT role_id FROM group_roles WHERE group_id = $1`, groupID)
}

// PermissionsOfRole returns the permission ids linked to a role.
func (s *PGStore) PermissionsOfRole(ctx context.Context, roleID int64) ([]int64, error) {
	return s.listIDs(ctx, "permissions of role", `SELECT permission_id FROM role_permissions WHERE role_id = $1`, roleID)
}

// PermissionDetail fetches action and owning module of a permission.
// A permission deleted mid-traversal surfaces as shared.ErrNotFound; the
// resolver drops it rather than failing the whole resolution.
func (s *PGStore) PermissionDetail(ctx context.Context, permissionID int64) (PermissionDetail, error) {
	var detail PermissionDetail
	err := s.pool.QueryRow(ctx, `SELECT action, module_id FROM permissions WHERE id = $1`, permissionID).
		Scan(&detail.Action, &detail.ModuleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PermissionDetail{}, shared.ErrNotFound
		}
		return PermissionDetail{}, wrapStoreErr("permission detail", err)
	}
	return detail, nil
}

// ModuleName resolves a module id to its name.
func (s *PGStore) ModuleName(ctx context.Context, moduleID int64) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT name FROM modules WHERE id = $1`, moduleID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", wrapStoreErr("module name", err)
	}
	return name, nil
}

func (s *PGStore) listIDs(ctx context.Context, op, query string, arg any) ([]int64, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, wrapStoreErr(op, err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapStoreErr(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr(op, err)
	}
	return ids, nil
}

var _ GraphStore = (*PGStore)(nil)
