package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

// RefreshTokenModel maps refresh_tokens. Only the SHA-256 digest of a token
// is stored. A revoked or rotated token is soft-deleted.
type RefreshTokenModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Digest     string    `gorm:"type:char(64);uniqueIndex;not null"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	RememberMe bool      `gorm:"not null;default:false"`
	ExpiresAt  time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	softdelete.Model
}

func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// PasswordResetTokenModel maps password_reset_tokens. A redeemed token is
// soft-deleted; deleted_at is the redemption time.
type PasswordResetTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Digest    string    `gorm:"type:char(64);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	softdelete.Model
}

func (PasswordResetTokenModel) TableName() string {
	return "password_reset_tokens"
}
