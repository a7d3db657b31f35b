package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finance-tracker/platform/internal/domain/message"
)

var (
	// ErrUnknownValidator is returned when a descriptor names a validator that is not registered.
	ErrUnknownValidator = errors.New("unknown password validator")

	// ErrInvalidOptions is returned when a validator factory rejects its options.
	ErrInvalidOptions = errors.New("invalid password validator options")
)

// Violation codes reported by the built-in validators.
const (
	CodePasswordTooLong         = "password_too_long"
	CodePasswordTooShort        = "password_too_short"
	CodePasswordTooCommon       = "password_too_common"
	CodePasswordEntirelyNumeric = "password_entirely_numeric"
	CodePasswordInvalid         = "password_invalid"
)

// Violation is a single failed password check.
type Violation struct {
	Code    string
	Message string
	Params  message.Params
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return v.Message
}

// ValidationError aggregates every violation reported by one validation run.
type ValidationError struct {
	Violations []*Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Unwrap exposes each violation to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Violations))
	for i, v := range e.Violations {
		errs[i] = v
	}
	return errs
}

// Codes returns the violation codes in validator order.
func (e *ValidationError) Codes() []string {
	codes := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = v.Code
	}
	return codes
}

// Messages returns the violation messages in validator order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return msgs
}

// HasCode reports whether any violation carries the given code.
func (e *ValidationError) HasCode(code string) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ConfigError reports a validator descriptor that could not be resolved or
// instantiated. It is a startup fault, never a per-request outcome.
type ConfigError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("password validator %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
