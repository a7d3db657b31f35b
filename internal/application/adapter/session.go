package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/domain/entity"
)

// Session is the credential pair handed to a signed-in client.
type Session struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is when the access token stops being accepted.
	ExpiresAt time.Time
}

// SessionClaims identify the user behind a token.
type SessionClaims struct {
	UserID     uuid.UUID
	Email      string
	RememberMe bool
}

// SessionService issues and revokes sessions. Refresh tokens are stored so
// they can be revoked; a revoked token keeps its row with deleted_at set.
type SessionService interface {
	// Open issues a new session for user.
	Open(ctx context.Context, user *entity.User, rememberMe bool) (*Session, error)

	// Verify checks an access token.
	Verify(ctx context.Context, accessToken string) (*SessionClaims, error)

	// Rotate revokes a live refresh token and returns its claims so the caller
	// can open the next session. A token can be rotated once.
	Rotate(ctx context.Context, refreshToken string) (*SessionClaims, error)

	// Revoke ends the session holding refreshToken. Unknown tokens are ignored.
	Revoke(ctx context.Context, refreshToken string) error

	// RevokeAll ends every session of a user and returns how many were live.
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ResetTicket is an issued password reset token.
type ResetTicket struct {
	Token     string
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// ResetTokenService issues single-use password reset tokens.
type ResetTokenService interface {
	Issue(ctx context.Context, user *entity.User) (*ResetTicket, error)

	// Lookup returns the ticket for an unused, unexpired token.
	Lookup(ctx context.Context, token string) (*ResetTicket, error)

	// Redeem marks the token used.
	Redeem(ctx context.Context, token string) error
}
