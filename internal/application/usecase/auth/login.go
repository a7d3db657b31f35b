package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

type LoginOutput struct {
	User    *entity.User
	Session *adapter.Session
}

// Login signs in an open account. Closed accounts fail like unknown emails.
type Login struct{ deps Deps }

func NewLogin(deps Deps) *Login {
	return &Login{deps: deps}
}

func (uc *Login) Execute(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domainerror.New(domainerror.CodeMissingFields, "email and password are required", nil)
	}

	user, err := uc.deps.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, domainerror.ErrUserNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := uc.deps.Hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return nil, invalidCredentials()
	}

	session, err := uc.deps.Sessions.Open(ctx, user, in.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &LoginOutput{User: user, Session: session}, nil
}
