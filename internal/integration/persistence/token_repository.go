package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/platform/internal/application/adapter"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

// TokenRepository stores refresh and password reset tokens by digest. A token
// is live until it is soft-deleted; expiry is checked by the caller.
type TokenRepository struct {
	db      *gorm.DB
	refresh *softdelete.Store[model.RefreshTokenModel]
	reset   *softdelete.Store[model.PasswordResetTokenModel]
}

// NewTokenRepository creates a TokenRepository.
func NewTokenRepository(db *gorm.DB, clock adapter.Clock, opts ...softdelete.Option) *TokenRepository {
	return &TokenRepository{
		db:      db,
		refresh: softdelete.NewStore[model.RefreshTokenModel](db, clock, opts...),
		reset:   softdelete.NewStore[model.PasswordResetTokenModel](db, clock, opts...),
	}
}

func byDigest(digest string) softdelete.Scope {
	return softdelete.Where("digest = ?", digest)
}

func byUser(userID uuid.UUID) softdelete.Scope {
	return softdelete.Where("user_id = ?", userID)
}

func (r *TokenRepository) CreateRefresh(ctx context.Context, token *model.RefreshTokenModel) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindRefresh returns the live refresh token with digest.
func (r *TokenRepository) FindRefresh(ctx context.Context, digest string) (*model.RefreshTokenModel, error) {
	return tokenOrNotFound(r.refresh.FindActive(ctx, byDigest(digest)))
}

// RevokeRefresh soft-deletes the live token with digest. It returns 0 when
// the token was unknown or already revoked.
func (r *TokenRepository) RevokeRefresh(ctx context.Context, digest string) (int64, error) {
	return r.refresh.Delete(ctx, byDigest(digest))
}

// RevokeUserRefresh soft-deletes every live refresh token of a user.
func (r *TokenRepository) RevokeUserRefresh(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.refresh.Delete(ctx, byUser(userID))
}

// ListRefresh returns a user's refresh tokens, revoked ones included.
func (r *TokenRepository) ListRefresh(ctx context.Context, userID uuid.UUID) ([]model.RefreshTokenModel, error) {
	return r.refresh.ListAll(ctx, byUser(userID))
}

func (r *TokenRepository) CreateReset(ctx context.Context, token *model.PasswordResetTokenModel) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindReset returns the unredeemed reset token with digest.
func (r *TokenRepository) FindReset(ctx context.Context, digest string) (*model.PasswordResetTokenModel, error) {
	return tokenOrNotFound(r.reset.FindActive(ctx, byDigest(digest)))
}

// RedeemReset soft-deletes the reset token with digest.
func (r *TokenRepository) RedeemReset(ctx context.Context, digest string) (int64, error) {
	return r.reset.Delete(ctx, byDigest(digest))
}

// RevokeUserResets soft-deletes every outstanding reset token of a user.
func (r *TokenRepository) RevokeUserResets(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.reset.Delete(ctx, byUser(userID))
}

func tokenOrNotFound[T any](row *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerror.ErrTokenNotFound
	}
	return row, err
}
