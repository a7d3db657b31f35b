// Package middleware holds the gin middleware of the HTTP API.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/dto"
)

const (
	userIDKey    = "auth.user_id"
	userEmailKey = "auth.user_email"
)

// Authenticator requires a bearer access token of an open account.
type Authenticator struct {
	sessions adapter.SessionService
	users    adapter.UserRepository
}

// NewAuthenticator creates the middleware. Tokens of closed accounts are
// rejected before they expire.
func NewAuthenticator(sessions adapter.SessionService, users adapter.UserRepository) *Authenticator {
	return &Authenticator{sessions: sessions, users: users}
}

func (a *Authenticator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, domainerror.CodeMissingToken, "Authorization bearer token is required")
			return
		}

		claims, err := a.sessions.Verify(c.Request.Context(), token)
		if err != nil {
			code, _ := domainerror.CodeOf(err)
			if code == "" {
				code = domainerror.CodeInvalidToken
			}
			abort(c, http.StatusUnauthorized, code, "Invalid or expired token")
			return
		}

		if _, err := a.users.FindByID(c.Request.Context(), claims.UserID); err != nil {
			if !errors.Is(err, domainerror.ErrUserNotFound) {
				slog.Error("Failed to load token owner", "error", err, "user_id", claims.UserID)
			}
			abort(c, http.StatusUnauthorized, domainerror.CodeInvalidToken, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated user set by Authenticator.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func abort(c *gin.Context, status int, code domainerror.Code, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg, Code: string(code)})
}
