// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Each
// verification failure keeps a distinct title so clients can decide between
// re-login and retry.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Not Authenticated", err.Error())
	case errors.Is(err, shared.ErrCredentialExpired):
		Problem(w, http.StatusUnauthorized, "Credential Expired", err.Error())
	case errors.Is(err, shared.ErrMalformedCredential):
		Problem(w, http.StatusUnauthorized, "Malformed Credential", err.Error())
	case errors.Is(err, shared.ErrInvalidCredential):
		Problem(w, http.StatusUnauthorized, "Invalid Credential", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Invalid Credentials", err.Error())
	case errors.Is(err, shared.ErrUserNotFound):
		Problem(w, http.StatusNotFound, "User Not Found", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrReferenceNotFound):
		Problem(w, http.StatusUnprocessableEntity, "Reference Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, shared.ErrStoreUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Store Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
