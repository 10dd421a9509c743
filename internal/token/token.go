// Package token issues and verifies the signed bearer tokens that gate
// every authenticated request.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
)

// Claims carries the identity claims embedded in a bearer token.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies bearer tokens with a process-wide secret
// loaded once at startup. It keeps no mutable state and is safe for
// concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager constructs a Manager.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token: signing secret required")
	}
	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the given user.
func (m *Manager) Issue(userID int64, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates a presented token and returns the authenticated
// principal. Failure modes are distinct so callers can tell re-login from
// retry: a blank token is shared.ErrUnauthenticated, an expired one is
// shared.ErrCredentialExpired, a bad signature or unparsable payload is
// shared.ErrInvalidCredential, and a verified token missing the user
// identifier claim is shared.ErrMalformedCredential.
func (m *Manager) Verify(tokenString string) (shared.Principal, error) {
	if strings.TrimSpace(tokenString) == "" {
		return shared.Principal{}, shared.ErrUnauthenticated
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return shared.Principal{}, fmt.Errorf("token: %w", shared.ErrCredentialExpired)
		}
		return shared.Principal{}, fmt.Errorf("token: %w", shared.ErrInvalidCredential)
	}

	if claims.UserID == 0 {
		return shared.Principal{}, fmt.Errorf("token: missing user identifier claim: %w", shared.ErrMalformedCredential)
	}

	return shared.Principal{UserID: claims.UserID, Username: claims.Username}, nil
}

// JTI extracts the token id claim without re-verifying. Used to revoke the
// matching session record on logout, after the middleware already verified
// the token.
func (m *Manager) JTI(tokenString string) string {
	var claims Claims
	if _, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return ""
	}
	return claims.ID
}
