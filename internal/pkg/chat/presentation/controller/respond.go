package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-chat/pkg/apperrors"
)

// respondError maps the error taxonomy onto HTTP status codes. Every failure
// reaches the client as a stable code plus a human-readable message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := apperrors.CodeUnknown
	message := "unexpected error"

	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		code = ae.Code
		message = ae.Message
		switch ae.Code {
		case apperrors.CodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.CodeForbidden:
			status = http.StatusForbidden
		case apperrors.CodeNotFound:
			status = http.StatusNotFound
		case apperrors.CodeInvalidInput:
			status = http.StatusBadRequest
		case apperrors.CodeConflict:
			status = http.StatusConflict
		case apperrors.CodeUnavailable:
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{"code": code, "error": message})
}
