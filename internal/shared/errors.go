package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrBadRequest indicates missing or invalid request parameters.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthenticated indicates no credential was presented.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredential indicates the presented token failed verification.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrCredentialExpired indicates the presented token has expired.
	ErrCredentialExpired = errors.New("credential expired")
	// ErrMalformedCredential indicates a verified token missing required claims.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the resolution target does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrReferenceNotFound indicates a mutation referenced a nonexistent entity.
	ErrReferenceNotFound = errors.New("referenced entity not found")
	// ErrStoreUnavailable indicates a transient storage failure, safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
