package ui

import (
	stderrors "errors"
	"log"
	"net/http"

	"datalens/domain/core"
	"datalens/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusForError maps application error codes onto HTTP status codes
func statusForError(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case stderrors.Is(err, core.ErrLLMDisabled):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, core.ErrQueryNotRecognized), stderrors.Is(err, core.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case core.IsIngestionError(err), core.IsQueryError(err):
		return http.StatusBadRequest
	}

	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeValidationError, errors.CodeInvalidInput, errors.CodeIngestion:
		return http.StatusBadRequest
	case errors.CodeLLMDisabled:
		return http.StatusServiceUnavailable
	case errors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a uniform error payload
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] ERROR %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
