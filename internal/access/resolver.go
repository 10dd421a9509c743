package access

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Resolver walks User→Group→Role→Permission→Module level by level and
// accumulates the deduplicated grant set. It never mutates the graph; a
// resolution only needs point-in-time consistency, so concurrent mutations
// may or may not be observed mid-traversal.
type Resolver struct {
	store GraphStore
}

// NewResolver constructs a Resolver over the given store.
func NewResolver(store GraphStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns every grant reachable from the user, at most once per
// permission identifier no matter how many group/role paths reach it. A
// user with no memberships resolves to an empty set; an unknown user fails
// with shared.ErrUserNotFound. Callers must not assume a stable order.
func (r *Resolver) Resolve(ctx context.Context, userID int64) ([]Grant, error) {
	exists, err := r.store.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("access: user %d: %w", userID, shared.ErrUserNotFound)
	}

	groupIDs, err := r.store.GroupsOfUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roleIDs, err := r.fanOut(ctx, groupIDs, r.store.RolesOfGroup)
	if err != nil {
		return nil, err
	}

	permissionIDs, err := r.fanOut(ctx, roleIDs, r.store.PermissionsOfRole)
	if err != nil {
		return nil, err
	}

	details, err := r.collectDetails(ctx, permissionIDs)
	if err != nil {
		return nil, err
	}

	moduleNames, err := r.collectModuleNames(ctx, details)
	if err != nil {
		return nil, err
	}

	grants := make([]Grant, 0, len(details))
	for id, detail := range details {
		name, ok := moduleNames[detail.ModuleID]
		if !ok {
			// Module deleted mid-traversal; its permissions go with it.
			continue
		}
		grants = append(grants, Grant{PermissionID: id, Action: detail.Action, Module: name})
	}
	return grants, nil
}

// fanOut queries the next level for every id concurrently and returns the
// deduplicated union. Duplicate ids across parents are folded before the
// next hop so redundant paths cost nothing and cannot change the result.
func (r *Resolver) fanOut(ctx context.Context, ids []int64, next func(context.Context, int64) ([]int64, error)) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	set := make(map[int64]struct{})

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			children, err := next(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, child := range children {
				set[child] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}

func (r *Resolver) collectDetails(ctx context.Context, permissionIDs []int64) (map[int64]PermissionDetail, error) {
	var mu sync.Mutex
	details := make(map[int64]PermissionDetail, len(permissionIDs))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range permissionIDs {
		g.Go(func() error {
			detail, err := r.store.PermissionDetail(gctx, id)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			details[id] = detail
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *Resolver) collectModuleNames(ctx context.Context, details map[int64]PermissionDetail) (map[int64]string, error) {
	distinct := make(map[int64]struct{}, len(details))
	for _, detail := range details {
		distinct[detail.ModuleID] = struct{}{}
	}

	var mu sync.Mutex
	names := make(map[int64]string, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	for id := range distinct {
		g.Go(func() error {
			name, err := r.store.ModuleName(gctx, id)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			names[id] = name
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}
