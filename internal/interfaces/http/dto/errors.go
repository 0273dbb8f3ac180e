package dto

import (
	"net/http"
	"strings"
)

// Error codes exposed on the wire. Domain error codes pass through
// unchanged; this file only decides the HTTP status they map to.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the actor lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Tenant resolution. A deleted tenant is gone, not missing; the
	// distinction matters to operators chasing a support ticket.
	"TENANT_UNRESOLVED": http.StatusNotFound,
	"TENANT_DELETED":    http.StatusGone,
	"TENANT_SUSPENDED":  http.StatusForbidden,

	// Licensing
	"NO_LICENSE":            http.StatusPaymentRequired,
	"LICENSE_EXPIRED":       http.StatusPaymentRequired,
	"LICENSE_SUSPENDED":     http.StatusForbidden,
	"LICENSE_REVOKED":       http.StatusForbidden,
	"NOT_ACTIVATED":         http.StatusConflict,
	"ALREADY_ACTIVATED":     http.StatusConflict,
	"INVALID_SERIAL_FORMAT": http.StatusBadRequest,
	"QUOTA_EXCEEDED":        http.StatusUnprocessableEntity,

	// Resources
	"ALREADY_EXISTS": http.StatusConflict,
	"DOMAIN_TAKEN":   http.StatusConflict,
	"NOT_DELETED":    http.StatusConflict,

	// Vault
	"DECRYPTION_FAILED": http.StatusUnprocessableEntity,

	// State transitions
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"INVALID_ORDER_STATE": http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped INVALID_* codes are treated as bad input; anything else
// unknown is an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
