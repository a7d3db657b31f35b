package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

type RegisterInput struct {
	Email         string
	Name          string
	Password      string
	TermsAccepted bool
}

type RegisterOutput struct {
	User    *entity.User
	Session *adapter.Session
}

// Register opens an account and signs it in.
type Register struct{ deps Deps }

func NewRegister(deps Deps) *Register {
	return &Register{deps: deps}
}

func (uc *Register) Execute(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return nil, domainerror.New(domainerror.CodeMissingFields, "email, name and password are required", nil)
	}
	if !in.TermsAccepted {
		return nil, domainerror.New(domainerror.CodeTermsNotAccepted, "terms of service must be accepted", nil)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	user := entity.NewUser(email, strings.TrimSpace(in.Name), uc.deps.Clock.Now())
	if err := checkPassword(uc.deps.Policy, in.Password, user.Subject()); err != nil {
		return nil, err
	}

	taken, err := uc.deps.Users.EmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, domainerror.New(domainerror.CodeEmailExists, "email already registered", nil)
	}

	hash, err := uc.deps.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.SetPasswordHash(hash, user.CreatedAt)

	if err := uc.deps.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	session, err := uc.deps.Sessions.Open(ctx, user, false)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &RegisterOutput{User: user, Session: session}, nil
}
