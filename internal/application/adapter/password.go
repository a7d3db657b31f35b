package adapter

import (
	"html/template"

	"github.com/finance-tracker/platform/internal/domain/password"
)

// PasswordHasher stores and checks password hashes.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare returns nil when plain matches hash.
	Compare(hash, plain string) error
}

// PasswordPolicy checks candidate passwords against the configured validators.
// *password.Policy satisfies it.
type PasswordPolicy interface {
	// Validate returns nil or a *password.ValidationError listing every violation.
	Validate(candidate string, subject *password.Subject) error

	// HelpTexts describes each requirement, in configuration order.
	HelpTexts() []string

	// HelpTextHTML returns the policy's accessor for the requirements as an
	// HTML list.
	HelpTextHTML() func() template.HTML
}
