package password

import (
	"unicode/utf8"

	"github.com/finance-tracker/platform/internal/domain/message"
)

const (
	// DefaultMaxLength is the maximum_length validator limit when none is configured.
	DefaultMaxLength = 256
	// DefaultMinLength is the minimum_length validator limit when none is configured.
	DefaultMinLength = 8
)

type maximumLengthOptions struct {
	MaxLength int `yaml:"max_length" validate:"gte=1"`
}

// MaximumLengthValidator rejects passwords longer than MaxLength characters.
type MaximumLengthValidator struct {
	MaxLength int
}

// NewMaximumLengthValidator is the Factory for the maximum_length validator.
// It accepts the max_length option (default 256).
func NewMaximumLengthValidator(opts Options) (Validator, error) {
	o := maximumLengthOptions{MaxLength: DefaultMaxLength}
	if err := decodeOptions(opts, &o); err != nil {
		return nil, err
	}
	return &MaximumLengthValidator{MaxLength: o.MaxLength}, nil
}

// Validate implements Validator.
func (v *MaximumLengthValidator) Validate(password string, _ *Subject) error {
	if utf8.RuneCountInString(password) <= v.MaxLength {
		return nil
	}

	params := message.Params{"max_length": v.MaxLength}
	return &Violation{
		Code: CodePasswordTooLong,
		Message: message.Pluralize(v.MaxLength,
			"This password is too long. It must contain no more than %{max_length} character.",
			"This password is too long. It must contain no more than %{max_length} characters.",
			params,
		),
		Params: params,
	}
}

// HelpText implements Validator.
func (v *MaximumLengthValidator) HelpText() string {
	return message.Pluralize(v.MaxLength,
		"Your password must contain no more than %{max_length} character.",
		"Your password must contain no more than %{max_length} characters.",
		message.Params{"max_length": v.MaxLength},
	)
}

type minimumLengthOptions struct {
	MinLength int `yaml:"min_length" validate:"gte=1"`
}

// MinimumLengthValidator rejects passwords shorter than MinLength characters.
type MinimumLengthValidator struct {
	MinLength int
}

// NewMinimumLengthValidator is the Factory for the minimum_length validator.
// It accepts the min_length option (default 8).
func NewMinimumLengthValidator(opts Options) (Validator, error) {
	o := minimumLengthOptions{MinLength: DefaultMinLength}
	if err := decodeOptions(opts, &o); err != nil {
		return nil, err
	}
	return &MinimumLengthValidator{MinLength: o.MinLength}, nil
}

// Validate implements Validator.
func (v *MinimumLengthValidator) Validate(password string, _ *Subject) error {
	if utf8.RuneCountInString(password) >= v.MinLength {
		return nil
	}

	params := message.Params{"min_length": v.MinLength}
	return &Violation{
		Code: CodePasswordTooShort,
		Message: message.Pluralize(v.MinLength,
			"This password is too short. It must contain at least %{min_length} character.",
			"This password is too short. It must contain at least %{min_length} characters.",
			params,
		),
		Params: params,
	}
}

// HelpText implements Validator.
func (v *MinimumLengthValidator) HelpText() string {
	return message.Pluralize(v.MinLength,
		"Your password must contain at least %{min_length} character.",
		"Your password must contain at least %{min_length} characters.",
		message.Params{"min_length": v.MinLength},
	)
}
