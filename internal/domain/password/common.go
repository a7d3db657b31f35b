package password

import (
	"bufio"
	_ "embed"
	"strings"
	"sync"
	"unicode"
)

//go:embed common_passwords.txt
var commonPasswordList string

var commonPasswords = sync.OnceValue(func() map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(commonPasswordList))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	return set
})

type noOptions struct{}

// CommonPasswordValidator rejects passwords found in the embedded list of
// frequently used passwords. The comparison is case-insensitive.
type CommonPasswordValidator struct{}

// NewCommonPasswordValidator is the Factory for the common_password validator.
// It takes no options.
func NewCommonPasswordValidator(opts Options) (Validator, error) {
	if err := decodeOptions(opts, &noOptions{}); err != nil {
		return nil, err
	}
	return &CommonPasswordValidator{}, nil
}

// Validate implements Validator.
func (v *CommonPasswordValidator) Validate(password string, _ *Subject) error {
	if _, found := commonPasswords()[strings.ToLower(strings.TrimSpace(password))]; !found {
		return nil
	}
	return &Violation{
		Code:    CodePasswordTooCommon,
		Message: "This password is too common.",
	}
}

// HelpText implements Validator.
func (v *CommonPasswordValidator) HelpText() string {
	return "Your password can't be a commonly used password."
}

// NumericPasswordValidator rejects passwords made only of digits.
type NumericPasswordValidator struct{}

// NewNumericPasswordValidator is the Factory for the numeric_password validator.
// It takes no options.
func NewNumericPasswordValidator(opts Options) (Validator, error) {
	if err := decodeOptions(opts, &noOptions{}); err != nil {
		return nil, err
	}
	return &NumericPasswordValidator{}, nil
}

// Validate implements Validator.
func (v *NumericPasswordValidator) Validate(password string, _ *Subject) error {
	if !isNumeric(password) {
		return nil
	}
	return &Violation{
		Code:    CodePasswordEntirelyNumeric,
		Message: "This password is entirely numeric.",
	}
}

// HelpText implements Validator.
func (v *NumericPasswordValidator) HelpText() string {
	return "Your password can't be entirely numeric."
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
