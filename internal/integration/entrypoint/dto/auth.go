package dto

import (
	"time"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
)

type RegisterRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name" binding:"max=100"`
	Password      string `json:"password"`
	TermsAccepted bool   `json:"terms_accepted"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest is also the logout body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type DeleteAccountRequest struct {
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation"`
}

type DeleteAccountResponse struct {
	Message  string    `json:"message"`
	ClosedAt time.Time `json:"closed_at"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func ToTokenResponse(s *adapter.Session) TokenResponse {
	return TokenResponse{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: s.ExpiresAt}
}

type AuthResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

func ToAuthResponse(user *entity.User, s *adapter.Session) AuthResponse {
	return AuthResponse{TokenResponse: ToTokenResponse(s), User: ToUserResponse(user)}
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type PasswordRequirementsResponse struct {
	HelpTexts    []string `json:"help_texts"`
	HelpTextHTML string   `json:"help_text_html"`
}
