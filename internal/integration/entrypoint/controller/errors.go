// Package controller holds the gin handlers of the HTTP API.
package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/domain/password"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/dto"
)

var statusByCode = map[domainerror.Code]int{
	domainerror.CodeEmailExists:         http.StatusConflict,
	domainerror.CodeTermsNotAccepted:    http.StatusBadRequest,
	domainerror.CodeWeakPassword:        http.StatusBadRequest,
	domainerror.CodeInvalidEmail:        http.StatusBadRequest,
	domainerror.CodeMissingFields:       http.StatusBadRequest,
	domainerror.CodeInvalidCredentials:  http.StatusUnauthorized,
	domainerror.CodeUserNotFound:        http.StatusUnauthorized,
	domainerror.CodeRateLimited:         http.StatusTooManyRequests,
	domainerror.CodeInvalidToken:        http.StatusUnauthorized,
	domainerror.CodeExpiredToken:        http.StatusUnauthorized,
	domainerror.CodeMissingToken:        http.StatusUnauthorized,
	domainerror.CodeInvalidResetToken:   http.StatusBadRequest,
	domainerror.CodeExpiredResetToken:   http.StatusBadRequest,
	domainerror.CodeInvalidConfirmation: http.StatusBadRequest,

	domainerror.CodeCategoryNameTooLong:   http.StatusBadRequest,
	domainerror.CodeInvalidColor:          http.StatusBadRequest,
	domainerror.CodeInvalidOwnerType:      http.StatusBadRequest,
	domainerror.CodeCategoryNotFound:      http.StatusNotFound,
	domainerror.CodeCategoryNameExists:    http.StatusConflict,
	domainerror.CodeCategoryForbidden:     http.StatusForbidden,
	domainerror.CodeInvalidCategoryType:   http.StatusBadRequest,
	domainerror.CodeMissingCategoryFields: http.StatusBadRequest,
	domainerror.CodeNoCategoriesSelected:  http.StatusBadRequest,
}

// StatusOf maps a use case error to its HTTP status. Uncoded errors are 500.
func StatusOf(err error) int {
	code, ok := domainerror.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "path", c.FullPath())
		c.JSON(status, dto.ErrorResponse{Error: "An internal error occurred"})
		return
	}

	var coded *domainerror.Error
	errors.As(err, &coded)
	body := dto.ErrorResponse{Error: coded.Message, Code: string(coded.Code)}

	var verr *password.ValidationError
	if errors.As(err, &verr) {
		body.Violations = dto.ToPasswordViolations(verr)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, code domainerror.Code, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Code: string(code)})
}
