package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prompter/internal/persist"
	"prompter/internal/preview"
	"prompter/internal/state"
	"prompter/internal/store"
	"prompter/internal/story"
)

const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeFileTooLarge  = "FILE_TOO_LARGE"
	CodeInternal      = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeValidation:    http.StatusBadRequest,
	CodeNotFound:      http.StatusNotFound,
	CodeQuotaExceeded: http.StatusForbidden,
	CodeFileTooLarge:  http.StatusRequestEntityTooLarge,
	CodeInternal:      http.StatusInternalServerError,
}

// Envelope is the shape of every response body.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is a failure that already knows its envelope code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func validationError(msg string) error { return &Error{Code: CodeValidation, Message: msg} }

func notFound(msg string) error { return &Error{Code: CodeNotFound, Message: msg} }

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// writeError maps err to an envelope code. Unrecognized errors are logged and
// reported as INTERNAL_ERROR without their text.
func (s *Server) writeError(c *gin.Context, err error) {
	body := classify(err)
	if body.Code == CodeInternal {
		s.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(statusByCode[body.Code], Envelope{Error: &body})
}

func classify(err error) ErrorBody {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return ErrorBody{Code: apiErr.Code, Message: apiErr.Message}
	case errors.Is(err, store.ErrNotFound):
		return ErrorBody{Code: CodeNotFound, Message: "resource not found"}
	case errors.Is(err, state.ErrUnknownPreset):
		return ErrorBody{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, state.ErrInvalidPatch),
		errors.Is(err, preview.ErrInvalidMessage),
		errors.Is(err, story.ErrTooManySlides):
		return ErrorBody{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, persist.ErrQuotaExceeded):
		return ErrorBody{Code: CodeQuotaExceeded, Message: "storage quota exceeded"}
	default:
		return ErrorBody{Code: CodeInternal, Message: "internal server error"}
	}
}
