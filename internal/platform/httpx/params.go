package httpx

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// ParamInt64 parses a chi route parameter as int64.
func ParamInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("httpx: parameter %s must be an integer: %w", name, shared.ErrBadRequest)
	}
	return id, nil
}
