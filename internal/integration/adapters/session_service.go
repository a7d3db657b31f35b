package adapters

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/persistence"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
)

const issuer = "finance-tracker"

// SessionConfig sets token lifetimes. RememberMe sessions use the longer pair.
type SessionConfig struct {
	Secret             string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RememberAccessTTL  time.Duration
	RememberRefreshTTL time.Duration
}

func (c SessionConfig) ttl(rememberMe bool) (access, refresh time.Duration) {
	if rememberMe {
		return c.RememberAccessTTL, c.RememberRefreshTTL
	}
	return c.AccessTTL, c.RefreshTTL
}

type accessClaims struct {
	Email      string `json:"email"`
	RememberMe bool   `json:"remember_me,omitempty"`
	jwt.RegisteredClaims
}

type sessionService struct {
	cfg    SessionConfig
	tokens *persistence.TokenRepository
	clock  adapter.Clock
}

// NewSessionService returns a SessionService signing HS256 access tokens.
// Refresh tokens are random strings stored by digest.
func NewSessionService(cfg SessionConfig, tokens *persistence.TokenRepository, clock adapter.Clock) adapter.SessionService {
	return &sessionService{cfg: cfg, tokens: tokens, clock: clock}
}

func (s *sessionService) Open(ctx context.Context, user *entity.User, rememberMe bool) (*adapter.Session, error) {
	now := s.clock.Now()
	accessTTL, refreshTTL := s.cfg.ttl(rememberMe)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email:      user.Email,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	}).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	err = s.tokens.CreateRefresh(ctx, &model.RefreshTokenModel{
		ID:         uuid.New(),
		Digest:     digest(refresh),
		UserID:     user.ID,
		RememberMe: rememberMe,
		ExpiresAt:  now.Add(refreshTTL),
		CreatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &adapter.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(accessTTL),
	}, nil
}

func (s *sessionService) Verify(_ context.Context, accessToken string) (*adapter.SessionClaims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, domainerror.New(domainerror.CodeExpiredToken, "access token has expired", err)
	}
	if err != nil {
		return nil, domainerror.New(domainerror.CodeInvalidToken, "invalid access token", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainerror.New(domainerror.CodeInvalidToken, "invalid access token", err)
	}
	return &adapter.SessionClaims{UserID: userID, Email: claims.Email, RememberMe: claims.RememberMe}, nil
}

func (s *sessionService) Rotate(ctx context.Context, refreshToken string) (*adapter.SessionClaims, error) {
	d := digest(refreshToken)
	row, err := s.tokens.FindRefresh(ctx, d)
	if errors.Is(err, domainerror.ErrTokenNotFound) {
		return nil, domainerror.New(domainerror.CodeInvalidToken, "invalid refresh token", err)
	}
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.RevokeRefresh(ctx, d)
	if err != nil {
		return nil, err
	}
	if revoked == 0 {
		return nil, domainerror.New(domainerror.CodeInvalidToken, "refresh token already used", nil)
	}
	if !row.ExpiresAt.After(s.clock.Now()) {
		return nil, domainerror.New(domainerror.CodeExpiredToken, "refresh token has expired", nil)
	}

	return &adapter.SessionClaims{UserID: row.UserID, RememberMe: row.RememberMe}, nil
}

func (s *sessionService) Revoke(ctx context.Context, refreshToken string) error {
	_, err := s.tokens.RevokeRefresh(ctx, digest(refreshToken))
	return err
}

func (s *sessionService) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.tokens.RevokeUserRefresh(ctx, userID)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
