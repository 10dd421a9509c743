package modules

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-iam/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Handler manages module endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers module routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listModules)
	r.Post("/", h.createModule)
	r.Get("/{id}", h.getModule)
	r.Put("/{id}", h.updateModule)
	r.Delete("/{id}", h.deleteModule)
}

type moduleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type modulePayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func toResponse(m Module) moduleResponse {
	return moduleResponse{ID: m.ID, Name: m.Name, Description: m.Description}
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	mods, err := h.service.ListModules(r.Context())
	if err != nil {
		h.logger.Error("list modules", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]moduleResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, toResponse(m))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"modules": out})
}

func (h *Handler) getModule(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	mod, err := h.service.GetModule(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(mod))
}

func (h *Handler) createModule(w http.ResponseWriter, r *http.Request) {
	var payload modulePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	mod, err := h.service.CreateModule(r.Context(), payload.Name, payload.Description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(mod))
}

func (h *Handler) updateModule(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload modulePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.RespondError(w, shared.ErrBadRequest)
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	mod, err := h.service.UpdateModule(r.Context(), id, payload.Name, payload.Description)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(mod))
}

func (h *Handler) deleteModule(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParamInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteModule(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "module deleted"})
}
