package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

// ForgotPasswordMessage is returned whether or not the email has an account.
const ForgotPasswordMessage = "If an account with that email exists, we have sent a password reset link"

// ForgotPassword issues a reset token and queues the link.
type ForgotPassword struct{ deps Deps }

func NewForgotPassword(deps Deps) *ForgotPassword {
	return &ForgotPassword{deps: deps}
}

// Execute only fails on malformed input; lookup and delivery problems are
// logged so the response does not reveal which emails are registered.
func (uc *ForgotPassword) Execute(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := checkEmail(email); err != nil {
		return "", err
	}

	user, err := uc.deps.Users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domainerror.ErrUserNotFound) {
			slog.Error("Forgot password lookup failed", "error", err)
		}
		return ForgotPasswordMessage, nil
	}

	ticket, err := uc.deps.Resets.Issue(ctx, user)
	if err != nil {
		slog.Error("Failed to issue reset token", "error", err, "user_id", user.ID)
		return ForgotPasswordMessage, nil
	}

	if uc.deps.Mailer == nil {
		slog.Info("Reset token issued, no mailer configured", "user_id", user.ID, "expires_at", ticket.ExpiresAt)
		return ForgotPasswordMessage, nil
	}
	if err := uc.deps.Mailer.PasswordReset(ctx, user, ticket, uc.deps.Policy.HelpTextHTML()()); err != nil {
		slog.Error("Failed to queue password reset email", "error", err, "user_id", user.ID)
	}
	return ForgotPasswordMessage, nil
}

type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPassword sets a new password with a reset token and signs out every
// session of the account.
type ResetPassword struct{ deps Deps }

func NewResetPassword(deps Deps) *ResetPassword {
	return &ResetPassword{deps: deps}
}

func (uc *ResetPassword) Execute(ctx context.Context, in ResetPasswordInput) error {
	if in.Token == "" || in.NewPassword == "" {
		return domainerror.New(domainerror.CodeMissingFields, "token and new password are required", nil)
	}

	ticket, err := uc.deps.Resets.Lookup(ctx, in.Token)
	if err != nil {
		return err
	}

	user, err := uc.deps.Users.FindByID(ctx, ticket.UserID)
	if errors.Is(err, domainerror.ErrUserNotFound) {
		return domainerror.New(domainerror.CodeInvalidResetToken, "invalid reset token", err)
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := checkPassword(uc.deps.Policy, in.NewPassword, user.Subject()); err != nil {
		return err
	}

	hash, err := uc.deps.Hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.SetPasswordHash(hash, uc.deps.Clock.Now())

	if err := uc.deps.Resets.Redeem(ctx, in.Token); err != nil {
		return err
	}
	if err := uc.deps.Users.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	revoked, err := uc.deps.Sessions.RevokeAll(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	slog.Info("Password reset", "user_id", user.ID, "sessions_revoked", revoked)
	return nil
}

type PasswordRequirements struct {
	HelpTexts []string
	HTML      template.HTML
}

// GetPasswordRequirements describes the configured password policy.
type GetPasswordRequirements struct{ deps Deps }

func NewGetPasswordRequirements(deps Deps) *GetPasswordRequirements {
	return &GetPasswordRequirements{deps: deps}
}

func (uc *GetPasswordRequirements) Execute() *PasswordRequirements {
	texts := uc.deps.Policy.HelpTexts()
	if texts == nil {
		texts = []string{}
	}
	return &PasswordRequirements{HelpTexts: texts, HTML: uc.deps.Policy.HelpTextHTML()()}
}
