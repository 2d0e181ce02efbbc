package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/http/middleware"
	"github.com/tbourn/go-salon-backend/internal/services"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"salon not found"`
}

// fail aborts with an ErrorResponse. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failFromError maps a service error to its HTTP status:
//
//	not_found          404
//	conflict           409
//	forbidden          403
//	invalid_transition 409
//	validation         400
//	bad credentials    401
//
// Anything else is a 500 whose cause is logged but not exposed.
func failFromError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		fail(c, http.StatusUnauthorized, ErrCodeInvalidLogin, err.Error())
		return
	}
	kind, ok := services.KindOf(err)
	if !ok {
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		return
	}
	switch kind {
	case services.KindNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case services.KindConflict:
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case services.KindForbidden:
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case services.KindInvalidTransition:
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case services.KindValidation:
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message" example:"removed from favorites"`
}
