package e2e

import (
	"context"
	"fmt"
	"sync"

	"github.com/gatehouse-iam/gatehouse/internal/access"
	"github.com/gatehouse-iam/gatehouse/internal/auth"
	"github.com/gatehouse-iam/gatehouse/internal/groups"
	"github.com/gatehouse-iam/gatehouse/internal/modules"
	"github.com/gatehouse-iam/gatehouse/internal/permissions"
	"github.com/gatehouse-iam/gatehouse/internal/roles"
	"github.com/gatehouse-iam/gatehouse/internal/shared"
	"github.com/gatehouse-iam/gatehouse/internal/users"
)

// world is an in-memory membership graph that backs every repository port
// at once, so the whole HTTP surface can run without a database.
type world struct {
	mu sync.Mutex

	nextID int64

	users       map[int64]*users.User
	groups      map[int64]*groups.Group
	roles       map[int64]*roles.Role
	modules     map[int64]*modules.Module
	permissions map[int64]*permissions.Permission

	userGroups map[int64]map[int64]struct{}
	groupRoles map[int64]map[int64]struct{}
	rolePerms  map[int64]map[int64]struct{}
}

func newWorld() *world {
	return &world{
		nextID:      1,
		users:       map[int64]*users.User{},
		groups:      map[int64]*groups.Group{},
		roles:       map[int64]*roles.Role{},
		modules:     map[int64]*modules.Module{},
		permissions: map[int64]*permissions.Permission{},
		userGroups:  map[int64]map[int64]struct{}{},
		groupRoles:  map[int64]map[int64]struct{}{},
		rolePerms:   map[int64]map[int64]struct{}{},
	}
}

func (w *world) id() int64 {
	id := w.nextID
	w.nextID++
	return id
}

func link(edges map[int64]map[int64]struct{}, from, to int64) {
	if edges[from] == nil {
		edges[from] = map[int64]struct{}{}
	}
	edges[from][to] = struct{}{}
}

func keys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// auth.Repository

func (w *world) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, u := range w.users {
		if u.Username == username {
			return &auth.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (w *world) CreateUser(ctx context.Context, username, passwordHash string) (*auth.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, u := range w.users {
		if u.Username == username {
			return nil, fmt.Errorf("username taken: %w", shared.ErrDuplicate)
		}
	}
	u := &users.User{ID: w.id(), Username: username, PasswordHash: passwordHash}
	w.users[u.ID] = u
	return &auth.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}, nil
}

// users.RepositoryPort

func (w *world) ListUsers(ctx context.Context) ([]users.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]users.User, 0, len(w.users))
	for _, u := range w.users {
		out = append(out, *u)
	}
	return out, nil
}

func (w *world) GetUser(ctx context.Context, id int64) (users.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, ok := w.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return *u, nil
}

func (w *world) UpdateUsername(ctx context.Context, id int64, username string) (users.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, ok := w.users[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	u.Username = username
	return *u, nil
}

func (w *world) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, ok := w.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (w *world) DeleteUser(ctx context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(w.users, id)
	delete(w.userGroups, id)
	return nil
}

func (w *world) ListUserGroups(ctx context.Context, userID int64) ([]int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return keys(w.userGroups[userID]), nil
}

// groups.RepositoryPort

func (w *world) ListGroups(ctx context.Context) ([]groups.Group, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]groups.Group, 0, len(w.groups))
	for _, g := range w.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (w *world) GetGroup(ctx context.Context, id int64) (groups.Group, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, ok := w.groups[id]
	if !ok {
		return groups.Group{}, shared.ErrNotFound
	}
	return *g, nil
}

func (w *world) CreateGroup(ctx context.Context, name string) (groups.Group, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g := &groups.Group{ID: w.id(), Name: name}
	w.groups[g.ID] = g
	return *g, nil
}

func (w *world) UpdateGroup(ctx context.Context, id int64, name string) (groups.Group, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, ok := w.groups[id]
	if !ok {
		return groups.Group{}, shared.ErrNotFound
	}
	g.Name = name
	return *g, nil
}

func (w *world) DeleteGroup(ctx context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.groups[id]; !ok {
		return shared.ErrNotFound
	}
	delete(w.groups, id)
	delete(w.groupRoles, id)
	for _, set := range w.userGroups {
		delete(set, id)
	}
	return nil
}

func (w *world) AttachUser(ctx context.Context, groupID, userID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.groups[groupID]; !ok {
		return shared.ErrReferenceNotFound
	}
	if _, ok := w.users[userID]; !ok {
		return shared.ErrReferenceNotFound
	}
	link(w.userGroups, userID, groupID)
	return nil
}

func (w *world) DetachUser(ctx context.Context, groupID, userID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if set, ok := w.userGroups[userID]; ok {
		delete(set, groupID)
	}
	return nil
}

func (w *world) AttachRole(ctx context.Context, groupID, roleID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.groups[groupID]; !ok {
		return shared.ErrReferenceNotFound
	}
	if _, ok := w.roles[roleID]; !ok {
		return shared.ErrReferenceNotFound
	}
	link(w.groupRoles, groupID, roleID)
	return nil
}

func (w *world) DetachRole(ctx context.Context, groupID, roleID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if set, ok := w.groupRoles[groupID]; ok {
		delete(set, roleID)
	}
	return nil
}

func (w *world) ListGroupUsers(ctx context.Context, groupID int64) ([]int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []int64
	for userID, set := range w.userGroups {
		if _, ok := set[groupID]; ok {
			out = append(out, userID)
		}
	}
	return out, nil
}

func (w *world) ListGroupRoles(ctx context.Context, groupID int64) ([]int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return keys(w.groupRoles[groupID]), nil
}

// roles.RepositoryPort

func (w *world) ListRoles(ctx context.Context) ([]roles.Role, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]roles.Role, 0, len(w.roles))
	for _, r := range w.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (w *world) GetRole(ctx context.Context, id int64) (roles.Role, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.roles[id]
	if !ok {
		return roles.Role{}, shared.ErrNotFound
	}
	return *r, nil
}

func (w *world) CreateRole(ctx context.Context, name string) (roles.Role, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := &roles.Role{ID: w.id(), Name: name}
	w.roles[r.ID] = r
	return *r, nil
}

func (w *world) UpdateRole(ctx context.Context, id int64, name string) (roles.Role, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.roles[id]
	if !ok {
		return roles.Role{}, shared.ErrNotFound
	}
	r.Name = name
	return *r, nil
}

func (w *world) DeleteRole(ctx context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(w.roles, id)
	delete(w.rolePerms, id)
	for _, set := range w.groupRoles {
		delete(set, id)
	}
	return nil
}

func (w *world) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.roles[roleID]; !ok {
		return shared.ErrReferenceNotFound
	}
	if _, ok := w.permissions[permissionID]; !ok {
		return shared.ErrReferenceNotFound
	}
	link(w.rolePerms, roleID, permissionID)
	return nil
}

func (w *world) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if set, ok := w.rolePerms[roleID]; ok {
		delete(set, permissionID)
	}
	return nil
}

func (w *world) ListRolePermissions(ctx context.Context, roleID int64) ([]int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return keys(w.rolePerms[roleID]), nil
}

func (w *world) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.roles[roleID]; !ok {
		return shared.ErrNotFound
	}
	set := map[int64]struct{}{}
	for _, id := range permissionIDs {
		if _, ok := w.permissions[id]; !ok {
			return shared.ErrReferenceNotFound
		}
		set[id] = struct{}{}
	}
	w.rolePerms[roleID] = set
	return nil
}

// modules.RepositoryPort

func (w *world) ListModules(ctx context.Context) ([]modules.Module, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]modules.Module, 0, len(w.modules))
	for _, m := range w.modules {
		out = append(out, *m)
	}
	return out, nil
}

func (w *world) GetModule(ctx context.Context, id int64) (modules.Module, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.modules[id]
	if !ok {
		return modules.Module{}, shared.ErrNotFound
	}
	return *m, nil
}

func (w *world) CreateModule(ctx context.Context, name, description string) (modules.Module, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range w.modules {
		if m.Name == name {
			return modules.Module{}, fmt.Errorf("module name taken: %w", shared.ErrDuplicate)
		}
	}
	m := &modules.Module{ID: w.id(), Name: name, Description: description}
	w.modules[m.ID] = m
	return *m, nil
}

func (w *world) UpdateModule(ctx context.Context, id int64, name, description string) (modules.Module, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.modules[id]
	if !ok {
		return modules.Module{}, shared.ErrNotFound
	}
	m.Name = name
	m.Description = description
	return *m, nil
}

func (w *world) DeleteModule(ctx context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.modules[id]; !ok {
		return shared.ErrNotFound
	}
	delete(w.modules, id)
	for permID, p := range w.permissions {
		if p.ModuleID == id {
			delete(w.permissions, permID)
			for _, set := range w.rolePerms {
				delete(set, permID)
			}
		}
	}
	return nil
}

// permissions.RepositoryPort

func (w *world) ListPermissions(ctx context.Context) ([]permissions.Permission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]permissions.Permission, 0, len(w.permissions))
	for _, p := range w.permissions {
		out = append(out, w.withModuleName(*p))
	}
	return out, nil
}

func (w *world) GetPermission(ctx context.Context, id int64) (permissions.Permission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.permissions[id]
	if !ok {
		return permissions.Permission{}, shared.ErrNotFound
	}
	return w.withModuleName(*p), nil
}

func (w *world) CreatePermission(ctx context.Context, action permissions.Action, moduleID int64) (permissions.Permission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.modules[moduleID]; !ok {
		return permissions.Permission{}, shared.ErrReferenceNotFound
	}
	p := &permissions.Permission{ID: w.id(), Action: action, ModuleID: moduleID}
	w.permissions[p.ID] = p
	return w.withModuleName(*p), nil
}

func (w *world) UpdatePermission(ctx context.Context, id int64, action permissions.Action, moduleID int64) (permissions.Permission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.permissions[id]
	if !ok {
		return permissions.Permission{}, shared.ErrNotFound
	}
	if _, ok := w.modules[moduleID]; !ok {
		return permissions.Permission{}, shared.ErrReferenceNotFound
	}
	p.Action = action
	p.ModuleID = moduleID
	return w.withModuleName(*p), nil
}

func (w *world) DeletePermission(ctx context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.permissions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(w.permissions, id)
	for _, set := range w.rolePerms {
		delete(set, id)
	}
	return nil
}

func (w *world) withModuleName(p permissions.Permission) permissions.Permission {
	if m, ok := w.modules[p.ModuleID]; ok {
		p.ModuleName = m.Name
	}
	return p
}

// access.GraphStore

func (w *world) UserExists(ctx context.Context, userID int64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.users[userID]
	return ok, nil
}

func (w *world) GroupsOfUser(ctx context.Context, userID int64) ([]int64, error) {
	return w.ListUserGroups(ctx, userID)
}

func (w *world) RolesOfGroup(ctx context.Context, groupID int64) ([]int64, error) {
	return w.ListGroupRoles(ctx, groupID)
}

func (w *world) PermissionsOfRole(ctx context.Context, roleID int64) ([]int64, error) {
	return w.ListRolePermissions(ctx, roleID)
}

func (w *world) PermissionDetail(ctx context.Context, permissionID int64) (access.PermissionDetail, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.permissions[permissionID]
	if !ok {
		return access.PermissionDetail{}, shared.ErrNotFound
	}
	return access.PermissionDetail{Action: string(p.Action), ModuleID: p.ModuleID}, nil
}

func (w *world) ModuleName(ctx context.Context, moduleID int64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.modules[moduleID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return m.Name, nil
}
