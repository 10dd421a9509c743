package access

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// stubStore is an in-memory graph for resolver tests.
type stubStore struct {
	users       map[int64]bool
	userGroups  map[int64][]int64
	groupRoles  map[int64][]int64
	rolePerms   map[int64][]int64
	permissions map[int64]PermissionDetail
	modules     map[int64]string
	failOn      string
}

func (s *stubStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	if s.failOn == "users" {
		return false, fmt.Errorf("access: user exists: %w", shared.ErrStoreUnavailable)
	}
	return s.users[userID], nil
}

func (s *stubStore) GroupsOfUser(ctx context.Context, userID int64) ([]int64, error) {
	if s.failOn == "groups" {
		return nil, fmt.Errorf("access: groups of user: %w", shared.ErrStoreUnavailable)
	}
	return s.userGroups[userID], nil
}

func (s *stubStore) RolesOfGroup(ctx context.Context, groupID int64) ([]int64, error) {
	if s.failOn == "roles" {
		return nil, fmt.Errorf("access: roles of group: %w", shared.ErrStoreUnavailable)
	}
	return s.groupRoles[groupID], nil
}

func (s *stubStore) PermissionsOfRole(ctx context.Context, roleID int64) ([]int64, error) {
	return s.rolePerms[roleID], nil
}

func (s *stubStore) PermissionDetail(ctx context.Context, permissionID int64) (PermissionDetail, error) {
	detail, ok := s.permissions[permissionID]
	if !ok {
		return PermissionDetail{}, shared.ErrNotFound
	}
	return detail, nil
}

func (s *stubStore) ModuleName(ctx context.Context, moduleID int64) (string, error) {
	name, ok := s.modules[moduleID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return name, nil
}

// billingGraph is one user in one group with one role granting READ on
// Billing.
func billingGraph() *stubStore {
	return &stubStore{
		users:       map[int64]bool{1: true},
		userGroups:  map[int64][]int64{1: {10}},
		groupRoles:  map[int64][]int64{10: {100}},
		rolePerms:   map[int64][]int64{100: {1000}},
		permissions: map[int64]PermissionDetail{1000: {Action: "READ", ModuleID: 5}},
		modules:     map[int64]string{5: "Billing"},
	}
}

func sortGrants(grants []Grant) {
	sort.Slice(grants, func(i, j int) bool { return grants[i].PermissionID < grants[j].PermissionID })
}

func TestResolveSingleChain(t *testing.T) {
	r := NewResolver(billingGraph())

	grants, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []Grant{{PermissionID: 1000, Action: "READ", Module: "Billing"}}, grants)
}

func TestResolveUnknownUser(t *testing.T) {
	r := NewResolver(billingGraph())

	_, err := r.Resolve(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestResolveNoMembershipsIsEmptyNotError(t *testing.T) {
	store := billingGraph()
	store.users[2] = true
	r := NewResolver(store)

	grants, err := r.Resolve(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestResolveDeduplicatesAcrossPaths(t *testing.T) {
	// Two groups share a role, and a second role regrants the same
	// permission. Every path lands on permission 1000 exactly once.
	store := &stubStore{
		users:      map[int64]bool{1: true},
		userGroups: map[int64][]int64{1: {10, 11}},
		groupRoles: map[int64][]int64{10: {100, 101}, 11: {100}},
		rolePerms:  map[int64][]int64{100: {1000}, 101: {1000, 1001}},
		permissions: map[int64]PermissionDetail{
			1000: {Action: "READ", ModuleID: 5},
			1001: {Action: "UPDATE", ModuleID: 5},
		},
		modules: map[int64]string{5: "Billing"},
	}
	r := NewResolver(store)

	grants, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	sortGrants(grants)
	require.Equal(t, []Grant{
		{PermissionID: 1000, Action: "READ", Module: "Billing"},
		{PermissionID: 1001, Action: "UPDATE", Module: "Billing"},
	}, grants)
}

func TestResolveKeepsEqualGrantsFromDistinctPermissions(t *testing.T) {
	// Two permission rows carrying the same module/action pair stay
	// separate entries; dedup keys on the permission id only.
	store := billingGraph()
	store.rolePerms[100] = []int64{1000, 1001}
	store.permissions[1001] = PermissionDetail{Action: "READ", ModuleID: 5}
	r := NewResolver(store)

	grants, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, grants, 2)
}

func TestResolveSkipsVanishedPermission(t *testing.T) {
	store := billingGraph()
	store.rolePerms[100] = []int64{1000, 9999}
	r := NewResolver(store)

	grants, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []Grant{{PermissionID: 1000, Action: "READ", Module: "Billing"}}, grants)
}

func TestResolveSkipsVanishedModule(t *testing.T) {
	store := billingGraph()
	delete(store.modules, 5)
	r := NewResolver(store)

	grants, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(billingGraph())

	first, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	sortGrants(first)
	sortGrants(second)
	require.Equal(t, first, second)
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	for _, level := range []string{"users", "groups", "roles"} {
		store := billingGraph()
		store.failOn = level
		r := NewResolver(store)

		_, err := r.Resolve(context.Background(), 1)
		require.ErrorIs(t, err, shared.ErrStoreUnavailable, "level %s", level)
	}
}
