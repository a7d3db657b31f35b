// Package password implements the configurable password-strength policy: a
// registry of named validator factories, the ordered validator pipeline built
// from configuration, and the built-in validators.
package password

import (
	"github.com/google/uuid"
)

// Subject identifies the account a password belongs to. Validators that compare
// the password against account attributes receive it; it may be nil.
type Subject struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// Validator is a single password-acceptability rule.
type Validator interface {
	// Validate returns nil when the password satisfies the rule, or a single
	// *Violation describing why it does not.
	Validate(password string, subject *Subject) error

	// HelpText returns a human-readable description of the rule.
	HelpText() string
}

// Options is the raw options mapping of a validator descriptor.
type Options map[string]any

// Descriptor names a registered validator and the options used to build it.
type Descriptor struct {
	Name    string  `yaml:"name" json:"name"`
	Options Options `yaml:"options,omitempty" json:"options,omitempty"`
}

// Factory builds a validator from its descriptor options. Factories own the
// validation of their options.
type Factory func(opts Options) (Validator, error)
