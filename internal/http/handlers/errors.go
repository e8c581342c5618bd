package handlers

import (
	"net/http"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/http/middleware"
	"hajjumrahflow/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, field, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Field:     field,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		respondError(c, http.StatusBadRequest, verr.Code, verr.Field, verr.Error())
		return
	}
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", "", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", "", err.Error())
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "not_authenticated", "", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "permission_denied", "", err.Error())
	default:
		utils.LogFailure(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "internal_error", "", "A server error occurred.")
	}
}
