package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/persistence"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
)

type resetTokenService struct {
	ttl    time.Duration
	tokens *persistence.TokenRepository
	clock  adapter.Clock
}

// NewResetTokenService returns a ResetTokenService issuing tokens valid for ttl.
func NewResetTokenService(ttl time.Duration, tokens *persistence.TokenRepository, clock adapter.Clock) adapter.ResetTokenService {
	return &resetTokenService{ttl: ttl, tokens: tokens, clock: clock}
}

func (s *resetTokenService) Issue(ctx context.Context, user *entity.User) (*adapter.ResetTicket, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	row := &model.PasswordResetTokenModel{
		ID:        uuid.New(),
		Digest:    digest(token),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.CreateReset(ctx, row); err != nil {
		return nil, err
	}
	return &adapter.ResetTicket{Token: token, UserID: user.ID, Email: user.Email, ExpiresAt: row.ExpiresAt}, nil
}

func (s *resetTokenService) Lookup(ctx context.Context, token string) (*adapter.ResetTicket, error) {
	row, err := s.tokens.FindReset(ctx, digest(token))
	if errors.Is(err, domainerror.ErrTokenNotFound) {
		return nil, domainerror.New(domainerror.CodeInvalidResetToken, "invalid or already used reset token", err)
	}
	if err != nil {
		return nil, err
	}
	if !row.ExpiresAt.After(s.clock.Now()) {
		return nil, domainerror.New(domainerror.CodeExpiredResetToken, "reset token has expired", nil)
	}
	return &adapter.ResetTicket{Token: token, UserID: row.UserID, Email: row.Email, ExpiresAt: row.ExpiresAt}, nil
}

func (s *resetTokenService) Redeem(ctx context.Context, token string) error {
	n, err := s.tokens.RedeemReset(ctx, digest(token))
	if err != nil {
		return err
	}
	if n == 0 {
		return domainerror.New(domainerror.CodeInvalidResetToken, "invalid or already used reset token", nil)
	}
	return nil
}
