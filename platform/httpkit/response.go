// Package httpkit provides HTTP response and middleware utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"filmdecks_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created sends a 201 Created response with the given payload.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Error sends an error envelope with the given status code.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Success: false, Error: message, Details: details})
}

// HandleError maps err to a response and reports whether it wrote one.
// Typed errors use their Kind's status. Anything else is an unexpected
// failure: the cause is attached to the gin context for the request
// logger and the client only sees a generic 500.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) && domainErr.Kind != apperr.KindUnknown {
		status := domainErr.HTTPStatus()
		message := domainErr.Message
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
			if domainErr.Kind == apperr.KindInternal {
				message = internalErrorMessage
			}
		}
		Error(c, status, message, domainErr.Details)
		return true
	}

	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, internalErrorMessage, nil)
	return true
}
