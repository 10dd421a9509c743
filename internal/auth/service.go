package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-iam/gatehouse/internal/shared"
	"github.com/gatehouse-iam/gatehouse/internal/token"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *token.Manager
	registry *SessionRegistry
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *token.Manager, registry *SessionRegistry, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, registry: registry, logger: logger}
}

// Register creates an account with a bcrypt-hashed credential.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("auth: missing username or password: %w", shared.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, username, string(hash))
}

// Login validates username/password credentials and issues a bearer token.
// Unknown usernames and wrong passwords are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", nil, err
	}

	if s.registry != nil {
		now := time.Now()
		sess := Session{
			TokenID:   s.tokens.JTI(signed),
			UserID:    user.ID,
			Username:  user.Username,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.tokens.TTL()),
		}
		if err := s.registry.Record(ctx, sess); err != nil {
			// Registry is advisory; a failed write must not block login.
			if s.logger != nil {
				s.logger.Warn("record session", slog.Any("error", err))
			}
		}
	}

	return signed, user, nil
}

// Logout revokes the registry record of the presented token.
func (s *Service) Logout(ctx context.Context, userID int64, rawToken string) error {
	if s.registry == nil {
		return nil
	}
	tokenID := s.tokens.JTI(rawToken)
	if tokenID == "" {
		return nil
	}
	return s.registry.Revoke(ctx, userID, tokenID)
}

// Sessions lists the live sessions of a user.
func (s *Service) Sessions(ctx context.Context, userID int64) ([]Session, error) {
	if s.registry == nil {
		return nil, nil
	}
	return s.registry.ListByUser(ctx, userID)
}
