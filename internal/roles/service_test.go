package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

type stubRepo struct {
	roles    map[int64]Role
	attached map[int64][]int64
	nextID   int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{roles: map[int64]Role{}, attached: map[int64][]int64{}, nextID: 1}
}

func (s *stubRepo) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) GetRole(ctx context.Context, id int64) (Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (s *stubRepo) CreateRole(ctx context.Context, name string) (Role, error) {
	r := Role{ID: s.nextID, Name: name}
	s.nextID++
	s.roles[r.ID] = r
	return r, nil
}

func (s *stubRepo) UpdateRole(ctx context.Context, id int64, name string) (Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	r.Name = name
	s.roles[id] = r
	return r, nil
}

func (s *stubRepo) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := s.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *stubRepo) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if _, ok := s.roles[roleID]; !ok {
		return shared.ErrReferenceNotFound
	}
	s.attached[roleID] = append(s.attached[roleID], permissionID)
	return nil
}

func (s *stubRepo) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	return nil
}

func (s *stubRepo) ListRolePermissions(ctx context.Context, roleID int64) ([]int64, error) {
	return s.attached[roleID], nil
}

func (s *stubRepo) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, ok := s.roles[roleID]; !ok {
		return shared.ErrNotFound
	}
	s.attached[roleID] = permissionIDs
	return nil
}

func TestCreateRoleRequiresName(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.CreateRole(context.Background(), "   ")
	require.ErrorIs(t, err, shared.ErrBadRequest)
}

func TestCreateRoleTrimsName(t *testing.T) {
	svc := NewService(newStubRepo())

	r, err := svc.CreateRole(context.Background(), "  billing-admin  ")
	require.NoError(t, err)
	require.Equal(t, "billing-admin", r.Name)
}

func TestAttachPermissionRequiresID(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	r, err := svc.CreateRole(context.Background(), "billing-admin")
	require.NoError(t, err)

	err = svc.AttachPermission(context.Background(), r.ID, 0)
	require.ErrorIs(t, err, shared.ErrBadRequest)
	require.Empty(t, repo.attached[r.ID])
}

func TestAttachPermissionMissingRole(t *testing.T) {
	svc := NewService(newStubRepo())

	err := svc.AttachPermission(context.Background(), 42, 7)
	require.ErrorIs(t, err, shared.ErrReferenceNotFound)
}

func TestReplacePermissions(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	r, err := svc.CreateRole(context.Background(), "billing-admin")
	require.NoError(t, err)

	require.NoError(t, svc.AttachPermission(context.Background(), r.ID, 1))
	require.NoError(t, svc.ReplacePermissions(context.Background(), r.ID, []int64{2, 3}))

	ids, err := svc.ListRolePermissions(context.Background(), r.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, ids)
}
