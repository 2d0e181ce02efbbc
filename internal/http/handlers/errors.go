// Package handlers defines the HTTP error codes used across all API endpoints.
//
// Every error response carries one of these stable, snake_case codes next to
// its HTTP status so clients can branch without parsing messages.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_transition",
//	  "message": "cannot change booking status from cancelled to confirmed"
//	}
package handlers

const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeValidation        = "validation_failed"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeInvalidLogin      = "invalid_credentials"
	ErrCodeForbidden         = "forbidden"
	ErrCodeNotFound          = "not_found"
	ErrCodeConflict          = "conflict"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeRateLimited       = "too_many_requests"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
	ErrCodeInternal          = "internal_error"
)
