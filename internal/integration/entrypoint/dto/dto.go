// Package dto holds the JSON bodies of the HTTP API.
package dto

import (
	"github.com/finance-tracker/platform/internal/domain/password"
)

// ErrorResponse is the body of every failed request. Violations is set when
// a password was rejected.
type ErrorResponse struct {
	Error      string              `json:"error"`
	Code       string              `json:"code,omitempty"`
	Violations []PasswordViolation `json:"violations,omitempty"`
}

type PasswordViolation struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

func ToPasswordViolations(err *password.ValidationError) []PasswordViolation {
	out := make([]PasswordViolation, len(err.Violations))
	for i, v := range err.Violations {
		out[i] = PasswordViolation{Code: v.Code, Message: v.Message, Params: v.Params}
	}
	return out
}

type MessageResponse struct {
	Message string `json:"message"`
}
