package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/platform/internal/application/usecase/auth"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/middleware"
)

// AuthController serves the account and session endpoints.
type AuthController struct {
	register      *auth.Register
	login         *auth.Login
	refresh       *auth.Refresh
	logout        *auth.Logout
	forgot        *auth.ForgotPassword
	reset         *auth.ResetPassword
	requirements  *auth.GetPasswordRequirements
	deleteAccount *auth.DeleteAccount
}

// NewAuthController builds every account use case over deps.
func NewAuthController(deps auth.Deps) *AuthController {
	return &AuthController{
		register:      auth.NewRegister(deps),
		login:         auth.NewLogin(deps),
		refresh:       auth.NewRefresh(deps),
		logout:        auth.NewLogout(deps),
		forgot:        auth.NewForgotPassword(deps),
		reset:         auth.NewResetPassword(deps),
		requirements:  auth.NewGetPasswordRequirements(deps),
		deleteAccount: auth.NewDeleteAccount(deps),
	}
}

// Register handles POST /auth/register.
func (h *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingFields, "Invalid request body")
		return
	}

	out, err := h.register.Execute(c.Request.Context(), auth.RegisterInput{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAuthResponse(out.User, out.Session))
}

// Login handles POST /auth/login.
func (h *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingFields, "Invalid request body")
		return
	}

	out, err := h.login.Execute(c.Request.Context(), auth.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAuthResponse(out.User, out.Session))
}

// Refresh handles POST /auth/refresh.
func (h *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingToken, "Invalid request body")
		return
	}

	session, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTokenResponse(session))
}

// Logout handles POST /auth/logout. It always answers 200.
func (h *AuthController) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if c.ShouldBindJSON(&req) == nil {
		if err := h.logout.Execute(c.Request.Context(), req.RefreshToken); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthController) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeInvalidEmail, "Invalid request body")
		return
	}

	msg, err := h.forgot.Execute(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthController) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingFields, "Invalid request body")
		return
	}

	err := h.reset.Execute(c.Request.Context(), auth.ResetPasswordInput{Token: req.Token, NewPassword: req.NewPassword})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}

// PasswordRequirements handles GET /auth/password-requirements.
func (h *AuthController) PasswordRequirements(c *gin.Context) {
	out := h.requirements.Execute()
	c.JSON(http.StatusOK, dto.PasswordRequirementsResponse{
		HelpTexts:    out.HelpTexts,
		HelpTextHTML: string(out.HTML),
	})
}

// DeleteAccount handles DELETE /users/me.
func (h *AuthController) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		writeError(c, domainerror.New(domainerror.CodeMissingToken, "Unauthorized", nil))
		return
	}

	var req dto.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingFields, "Invalid request body")
		return
	}

	_, err := h.deleteAccount.Execute(c.Request.Context(), auth.DeleteAccountInput{
		UserID:       userID,
		Password:     req.Password,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
