package access

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-iam/gatehouse/internal/observability"
	"github.com/gatehouse-iam/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Handler exposes the query surface: resolve my permissions and simulate
// an action. Both verdicts are computed fresh per call so they always
// reflect the current graph.
type Handler struct {
	logger    *slog.Logger
	resolver  *Resolver
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, resolver: resolver, metrics: metrics, validator: validator.New()}
}

// MountRoutes registers access routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me/permissions", h.getMyPermissions)
	r.Post("/simulate", h.simulateAction)
}

type simulatePayload struct {
	ModuleName string `json:"moduleName" validate:"required"`
	Action     string `json:"action" validate:"required"`
}

func (h *Handler) getMyPermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	grants, err := h.resolver.Resolve(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("resolve permissions", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	out := make([]Grant, 0, len(grants))
	for _, g := range grants {
		g.Action = strings.ToUpper(g.Action)
		out = append(out, g)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"userId":      principal.UserID,
		"permissions": out,
	})
}

func (h *Handler) simulateAction(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	var payload simulatePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	payload.ModuleName = strings.TrimSpace(payload.ModuleName)
	payload.Action = strings.TrimSpace(payload.Action)
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing moduleName or action")
		return
	}

	grants, err := h.resolver.Resolve(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("resolve for simulation", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	allowed := Authorize(grants, payload.ModuleName, payload.Action)
	if h.metrics != nil {
		h.metrics.RecordDecision(allowed)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"allowed": allowed})
}
