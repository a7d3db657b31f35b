// Package auth holds the account and session use cases.
package auth

import (
	"errors"
	"regexp"

	"github.com/finance-tracker/platform/internal/application/adapter"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/domain/password"
)

// Deps are the ports shared by the account use cases. Mailer may be nil, in
// which case no email is queued.
type Deps struct {
	Users    adapter.UserRepository
	Hasher   adapter.PasswordHasher
	Policy   adapter.PasswordPolicy
	Sessions adapter.SessionService
	Resets   adapter.ResetTokenService
	Mailer   adapter.Mailer
	Clock    adapter.Clock
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func checkEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return domainerror.New(domainerror.CodeInvalidEmail, "invalid email format", nil)
	}
	return nil
}

// checkPassword runs candidate through the policy. The returned error carries
// CodeWeakPassword and unwraps to the *password.ValidationError.
func checkPassword(policy adapter.PasswordPolicy, candidate string, subject *password.Subject) error {
	err := policy.Validate(candidate, subject)
	if err == nil {
		return nil
	}

	var verr *password.ValidationError
	if !errors.As(err, &verr) {
		verr = &password.ValidationError{Violations: []*password.Violation{{
			Code:    password.CodePasswordInvalid,
			Message: err.Error(),
		}}}
	}
	return domainerror.New(domainerror.CodeWeakPassword, "password does not meet requirements", verr)
}

func invalidCredentials() error {
	return domainerror.New(domainerror.CodeInvalidCredentials, "invalid email or password", nil)
}
