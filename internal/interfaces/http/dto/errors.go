package dto

import "net/http"

// Error codes returned by the console API
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeValidation   = "ERR_VALIDATION"
)

// Session and access error codes
const (
	// ErrCodeUnauthorized means no session is present
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden means the session lacks the screen's role
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeLoginFailed is a rejected login
	ErrCodeLoginFailed = "ERR_LOGIN_FAILED"
	// ErrCodeSessionStorage means the session could not be persisted
	ErrCodeSessionStorage = "ERR_SESSION_STORAGE"
)

// Screen error codes
const (
	ErrCodeNotFound       = "ERR_NOT_FOUND"
	ErrCodeUnknownScreen  = "ERR_UNKNOWN_SCREEN"
	ErrCodeNotPrintable   = "ERR_NOT_PRINTABLE"
	ErrCodePDFDisabled    = "ERR_PDF_DISABLED"
	ErrCodeRenderFailed   = "ERR_RENDER_FAILED"
	ErrCodeUpstream       = "ERR_UPSTREAM"
	ErrCodeRateLimited    = "ERR_RATE_LIMITED"
	ErrCodeRequestTooBig  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeDeleteDeclined = "ERR_DELETE_DECLINED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeValidation:   http.StatusUnprocessableEntity,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeLoginFailed:    http.StatusUnauthorized,
	ErrCodeSessionStorage: http.StatusInternalServerError,

	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeUnknownScreen:  http.StatusNotFound,
	ErrCodeNotPrintable:   http.StatusNotFound,
	ErrCodePDFDisabled:    http.StatusNotImplemented,
	ErrCodeRenderFailed:   http.StatusInternalServerError,
	ErrCodeUpstream:       http.StatusBadGateway,
	ErrCodeRateLimited:    http.StatusTooManyRequests,
	ErrCodeRequestTooBig:  http.StatusRequestEntityTooLarge,
	ErrCodeDeleteDeclined: http.StatusOK,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodes maps domain error codes onto console error codes
var DomainErrorCodes = map[string]string{
	"NOT_FOUND":       ErrCodeNotFound,
	"INVALID_INPUT":   ErrCodeInvalidInput,
	"INVALID_ENUM":    ErrCodeInvalidInput,
	"UNAUTHORIZED":    ErrCodeUnauthorized,
	"NO_SESSION":      ErrCodeUnauthorized,
	"FORBIDDEN":       ErrCodeForbidden,
	"LOGIN_FAILED":    ErrCodeLoginFailed,
	"NOT_PRINTABLE":   ErrCodeNotPrintable,
	"PDF_DISABLED":    ErrCodePDFDisabled,
	"DELETE_DECLINED": ErrCodeDeleteDeclined,
}

// NormalizeErrorCode converts a domain error code to the console format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodes[code]; ok {
		return newCode
	}
	return code
}
