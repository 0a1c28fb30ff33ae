package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the remote API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// MessageOr returns the server's human-readable message carried by err,
// verbatim, or fallback when the server sent none (including transport
// failures, which never reached the server).
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseAPIError extracts the message from the shapes seen across the API:
// {"message": ...}, {"error": "..."}, {"error": {"message", "code"}}, {"msg": ...}
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	if raw, ok := payload["error"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			apiErr.Message = strings.TrimSpace(s)
		} else {
			var nested struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(raw, &nested) == nil {
				apiErr.Code = nested.Code
				apiErr.Message = strings.TrimSpace(nested.Message)
			}
		}
	}
	for _, key := range []string{"message", "msg"} {
		if apiErr.Message != "" {
			break
		}
		var s string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &s) == nil {
			apiErr.Message = strings.TrimSpace(s)
		}
	}
	if apiErr.Code == "" {
		var code string
		if raw, ok := payload["code"]; ok && json.Unmarshal(raw, &code) == nil {
			apiErr.Code = code
		}
	}
	return apiErr
}
