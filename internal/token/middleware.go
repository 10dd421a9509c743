package token

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatehouse-iam/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Middleware guards routes behind bearer token verification.
type Middleware struct {
	Manager *Manager
	Logger  *slog.Logger
}

// RequireAuth verifies the Authorization header and stores the principal in
// the request context. Verification failures are reported as-is, never
// downgraded to an anonymous request.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := BearerToken(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		principal, err := m.Manager.Verify(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("token verification failed", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", shared.ErrUnauthenticated
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", shared.ErrUnauthenticated
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", shared.ErrUnauthenticated
	}
	return raw, nil
}
