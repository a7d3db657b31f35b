// Package error defines the coded errors returned by use cases.
//
// A code has the form AREA-GGNNNN where GG groups related failures. Handlers
// map codes to HTTP statuses; the Err chain keeps the cause for logging.
package error

import "errors"

// Code identifies a failure across the API.
type Code string

// Account and session codes.
const (
	CodeEmailExists         Code = "AUTH-010001"
	CodeTermsNotAccepted    Code = "AUTH-010002"
	CodeWeakPassword        Code = "AUTH-010003"
	CodeInvalidEmail        Code = "AUTH-010004"
	CodeMissingFields       Code = "AUTH-010005"
	CodeInvalidCredentials  Code = "AUTH-020001"
	CodeUserNotFound        Code = "AUTH-020002"
	CodeRateLimited         Code = "AUTH-020003"
	CodeInvalidToken        Code = "AUTH-030001"
	CodeExpiredToken        Code = "AUTH-030002"
	CodeMissingToken        Code = "AUTH-030003"
	CodeInvalidResetToken   Code = "AUTH-040001"
	CodeExpiredResetToken   Code = "AUTH-040002"
	CodeInvalidConfirmation Code = "AUTH-050001"
)

// Category codes.
const (
	CodeCategoryNameTooLong   Code = "CAT-010001"
	CodeInvalidColor          Code = "CAT-010002"
	CodeInvalidOwnerType      Code = "CAT-010003"
	CodeCategoryNotFound      Code = "CAT-010004"
	CodeCategoryNameExists    Code = "CAT-010005"
	CodeCategoryForbidden     Code = "CAT-010006"
	CodeInvalidCategoryType   Code = "CAT-010007"
	CodeMissingCategoryFields Code = "CAT-010008"
	CodeNoCategoriesSelected  Code = "CAT-010009"
)

// Lookup misses reported by repositories.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTokenNotFound    = errors.New("token not found")
	ErrEmailJobNotFound = errors.New("email job not found")
)

// Error is a failure the caller can act on.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New returns an Error. err may be nil.
func New(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the first Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
