package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatehouse-iam/gatehouse/internal/access"
	"github.com/gatehouse-iam/gatehouse/internal/app"
	"github.com/gatehouse-iam/gatehouse/internal/auth"
	"github.com/gatehouse-iam/gatehouse/internal/groups"
	"github.com/gatehouse-iam/gatehouse/internal/modules"
	"github.com/gatehouse-iam/gatehouse/internal/observability"
	"github.com/gatehouse-iam/gatehouse/internal/permissions"
	"github.com/gatehouse-iam/gatehouse/internal/roles"
	"github.com/gatehouse-iam/gatehouse/internal/token"
	"github.com/gatehouse-iam/gatehouse/internal/users"

	_ "github.com/gatehouse-iam/gatehouse/internal/testing/guard"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := newWorld()

	tokens, err := token.NewManager("e2e-secret", time.Hour)
	require.NoError(t, err)

	authService := auth.NewService(w, tokens, nil, logger)
	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             &app.Config{},
		Metrics:            observability.NewMetrics(),
		TokenMiddleware:    token.Middleware{Manager: tokens, Logger: logger},
		AuthHandler:        auth.NewHandler(logger, authService),
		UsersHandler:       users.NewHandler(logger, users.NewService(w)),
		GroupsHandler:      groups.NewHandler(logger, groups.NewService(w)),
		RolesHandler:       roles.NewHandler(logger, roles.NewService(w)),
		ModulesHandler:     modules.NewHandler(logger, modules.NewService(w)),
		PermissionsHandler: permissions.NewHandler(logger, permissions.NewService(w)),
		AccessHandler:      access.NewHandler(logger, access.NewResolver(w), nil),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, payload any) (int, map[string]any) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return resp.StatusCode, out
}

func id(t *testing.T, body map[string]any) int64 {
	t.Helper()
	raw, ok := body["id"].(float64)
	require.True(t, ok, "response has no id: %v", body)
	return int64(raw)
}

func TestEndToEndGrantFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	// Protected routes reject anonymous callers.
	code, _ := c.do(http.MethodGet, "/api/users/", nil)
	require.Equal(t, http.StatusUnauthorized, code)

	code, body := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, code)
	userID := id(t, body)

	code, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, code)
	c.token = body["token"].(string)

	// Fresh user resolves to an empty grant set.
	code, body = c.do(http.MethodGet, "/api/access/me/permissions", nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["permissions"])

	code, body = c.do(http.MethodPost, "/api/modules/", map[string]string{
		"name": "Billing", "description": "Invoices and payments",
	})
	require.Equal(t, http.StatusCreated, code)
	moduleID := id(t, body)

	code, body = c.do(http.MethodPost, "/api/permissions/", map[string]any{
		"action": "read", "moduleId": moduleID,
	})
	require.Equal(t, http.StatusCreated, code)
	permissionID := id(t, body)

	code, body = c.do(http.MethodPost, "/api/roles/", map[string]string{"roleName": "billing-reader"})
	require.Equal(t, http.StatusCreated, code)
	roleID := id(t, body)

	code, _ = c.do(http.MethodPost, "/api/roles/"+itoa(roleID)+"/permissions", map[string]any{
		"permissionId": permissionID,
	})
	require.Equal(t, http.StatusOK, code)

	code, body = c.do(http.MethodPost, "/api/groups/", map[string]string{"groupName": "billing-team"})
	require.Equal(t, http.StatusCreated, code)
	groupID := id(t, body)

	code, _ = c.do(http.MethodPost, "/api/groups/"+itoa(groupID)+"/roles", map[string]any{"roleId": roleID})
	require.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPost, "/api/groups/"+itoa(groupID)+"/users", map[string]any{"userId": userID})
	require.Equal(t, http.StatusOK, code)

	// The new membership path is visible on the next resolution.
	code, body = c.do(http.MethodGet, "/api/access/me/permissions", nil)
	require.Equal(t, http.StatusOK, code)
	perms := body["permissions"].([]any)
	require.Len(t, perms, 1)
	grant := perms[0].(map[string]any)
	require.Equal(t, "READ", grant["action"])
	require.Equal(t, "Billing", grant["module"])

	code, body = c.do(http.MethodPost, "/api/access/simulate", map[string]string{
		"moduleName": "billing", "action": "READ",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["allowed"])

	code, body = c.do(http.MethodPost, "/api/access/simulate", map[string]string{
		"moduleName": "Billing", "action": "DELETE",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["allowed"])

	// Attaching a permission to a missing role is an integrity error.
	code, _ = c.do(http.MethodPost, "/api/roles/9999/permissions", map[string]any{
		"permissionId": permissionID,
	})
	require.Equal(t, http.StatusUnprocessableEntity, code)

	// Detaching the user removes the only path to the grant.
	code, _ = c.do(http.MethodDelete, "/api/groups/"+itoa(groupID)+"/users/"+itoa(userID), nil)
	require.Equal(t, http.StatusOK, code)

	code, body = c.do(http.MethodPost, "/api/access/simulate", map[string]string{
		"moduleName": "Billing", "action": "READ",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["allowed"])
}

func TestHealthzOpen(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
