package auth

import "time"

// User represents an account that can authenticate.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the registry record of an issued token, kept for visibility
// and logout. The verifier never consults it; tokens stay self-contained.
type Session struct {
	TokenID   string    `json:"token_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
