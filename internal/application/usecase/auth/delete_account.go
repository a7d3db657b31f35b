package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

// DeleteConfirmation must be typed by the user to close an account.
const DeleteConfirmation = "DELETE"

type DeleteAccountInput struct {
	UserID       uuid.UUID
	Password     string
	Confirmation string
}

// DeleteAccount closes an account. The row is soft-deleted, every session is
// revoked and queued emails are cancelled before the closing notice is sent.
type DeleteAccount struct{ deps Deps }

func NewDeleteAccount(deps Deps) *DeleteAccount {
	return &DeleteAccount{deps: deps}
}

// Execute returns when the account was closed.
func (uc *DeleteAccount) Execute(ctx context.Context, in DeleteAccountInput) (time.Time, error) {
	if in.Confirmation != DeleteConfirmation {
		return time.Time{}, domainerror.New(domainerror.CodeInvalidConfirmation, "confirmation must be exactly 'DELETE'", nil)
	}

	user, err := uc.deps.Users.FindByID(ctx, in.UserID)
	if errors.Is(err, domainerror.ErrUserNotFound) {
		return time.Time{}, domainerror.New(domainerror.CodeUserNotFound, "user not found", err)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("find user: %w", err)
	}
	if err := uc.deps.Hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return time.Time{}, domainerror.New(domainerror.CodeInvalidCredentials, "invalid password", nil)
	}

	if _, err := uc.deps.Sessions.RevokeAll(ctx, user.ID); err != nil {
		return time.Time{}, fmt.Errorf("revoke sessions: %w", err)
	}
	if uc.deps.Mailer != nil {
		if _, err := uc.deps.Mailer.CancelPending(ctx, user.Email); err != nil {
			slog.Error("Failed to cancel pending emails", "error", err, "user_id", user.ID)
		}
	}
	if err := uc.deps.Users.Close(ctx, user.ID); err != nil {
		return time.Time{}, fmt.Errorf("close account: %w", err)
	}

	closed, err := uc.deps.Users.FindAnyByID(ctx, user.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("reload closed account: %w", err)
	}

	if uc.deps.Mailer != nil {
		if err := uc.deps.Mailer.AccountClosed(ctx, closed); err != nil {
			slog.Error("Failed to queue account closed email", "error", err, "user_id", closed.ID)
		}
	}
	slog.Info("Account closed", "user_id", closed.ID)
	return *closed.DeletedAt, nil
}
