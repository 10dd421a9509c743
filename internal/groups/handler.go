package groups

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-iam/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Handler manages group endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers group routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listGroups)
	r.Post("/", h.createGroup)
	r.Get("/{id}", h.getGroup)
	r.Put("/{id}", h.updateGroup)
	r.Delete("/{id}", h.deleteGroup)
	r.Get("/{id}/users", h.listGroupUsers)
	r.Post("/{id}/users", h.attachUser)
	r.Delete("/{id}/users/{userID}", h.detachUser)
	r.Get("/{id}/roles", h.listGroupRoles)
	r.Post("/{id}/roles", h.attachRole)
	r.Delete("/{id}/roles/{roleID}", h.detachRole)
}

type groupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type groupPayload struct {
	Name string `json:"groupName" validate:"required"`
}

type attachUserPayload struct {
	UserID int64 `json:"userId" validate:"required"`
}

type attachRolePayload struct {
	RoleID int64 `json:"roleId" validate:"required"`
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.logger.Error("list groups", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]groupResponse, 0, len(list))
	for _, g := range list {
		out = append(out, groupResponse{ID: g.ID, Name: g.Name})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	g, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groupResponse{ID: g.ID, Name: g.Name})
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var payload groupPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	g, err := h.service.CreateGroup(r.Context(), payload.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, groupResponse{ID: g.ID, Name: g.Name})
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload groupPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	g, err := h.service.UpdateGroup(r.Context(), id, payload.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groupResponse{ID: g.ID, Name: g.Name})
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "group deleted"})
}

func (h *Handler) listGroupUsers(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ids, err := h.service.ListGroupUsers(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groupId": id, "userIds": ids})
}

// attachUser hard-fails on a missing userId before any write is attempted.
func (h *Handler) attachUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload attachUserPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.service.AttachUser(r.Context(), id, payload.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "user attached"})
}

func (h *Handler) detachUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	userID, err := httpx.ParamInt64(r, "userID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DetachUser(r.Context(), id, userID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "user detached"})
}

func (h *Handler) listGroupRoles(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ids, err := h.service.ListGroupRoles(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groupId": id, "roleIds": ids})
}

// attachRole hard-fails on a missing roleId before any write is attempted.
func (h *Handler) attachRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload attachRolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.service.AttachRole(r.Context(), id, payload.RoleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "role attached"})
}

func (h *Handler) detachRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	roleID, err := httpx.ParamInt64(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DetachRole(r.Context(), id, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "role detached"})
}
