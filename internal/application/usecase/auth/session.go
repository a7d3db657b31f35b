package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/finance-tracker/platform/internal/application/adapter"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

// Refresh trades a refresh token for a new session. The old token is revoked.
type Refresh struct{ deps Deps }

func NewRefresh(deps Deps) *Refresh {
	return &Refresh{deps: deps}
}

func (uc *Refresh) Execute(ctx context.Context, refreshToken string) (*adapter.Session, error) {
	if refreshToken == "" {
		return nil, domainerror.New(domainerror.CodeMissingToken, "refresh token is required", nil)
	}

	claims, err := uc.deps.Sessions.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := uc.deps.Users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domainerror.ErrUserNotFound) {
		return nil, domainerror.New(domainerror.CodeInvalidToken, "account is closed", err)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	session, err := uc.deps.Sessions.Open(ctx, user, claims.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return session, nil
}

// Logout revokes a refresh token. Unknown tokens are not an error.
type Logout struct{ deps Deps }

func NewLogout(deps Deps) *Logout {
	return &Logout{deps: deps}
}

func (uc *Logout) Execute(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := uc.deps.Sessions.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
