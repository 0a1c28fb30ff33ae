package dto

import (
	"strconv"

	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/shared"
)

// Response is the envelope of every console API response. Toast and
// Redirect tell the front end what to show and where to go next.
type Response struct {
	Success  bool              `json:"success"`
	Data     any               `json:"data,omitempty"`
	Error    *ErrorInfo        `json:"error,omitempty"`
	Toast    *view.Toast       `json:"toast,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request ID for support lookups
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// FromOutcome wraps a workflow outcome
func FromOutcome(data any, out view.Outcome) Response {
	return Response{
		Success:  out.OK,
		Data:     data,
		Toast:    out.Toast,
		Redirect: out.Redirect,
		Errors:   out.Errors,
	}
}

// ListRequest holds the list query parameters of a screen
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
}

// Filter converts the request into a list filter. Every other query
// parameter is passed through as a server-side filter.
func (r ListRequest) Filter(query map[string][]string) shared.Filter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.PageSize > 0 {
		f.PageSize = r.PageSize
	}
	f.Search = r.Search
	for k, vs := range query {
		switch k {
		case "page", "page_size", "search", "confirm", "marker", "print", "format":
			continue
		}
		if len(vs) > 0 && vs[0] != "" {
			f.Filters[k] = vs[0]
		}
	}
	return f
}

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Credentials converts the request into login credentials
func (r LoginRequest) Credentials() identity.Credentials {
	return identity.Credentials{Email: r.Email, Password: r.Password}
}

// SessionResponse describes the current session. SessionID is returned
// once, at login, for clients that send it as a bearer instead of the
// cookie.
type SessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	Loading       bool               `json:"loading"`
	SessionID     string             `json:"session_id,omitempty"`
	User          *identity.Identity `json:"user,omitempty"`
	ExpiresAt     string             `json:"expires_at,omitempty"`
}

// NewSessionResponse describes s
func NewSessionResponse(s identity.Session, loading bool) SessionResponse {
	out := SessionResponse{Authenticated: s.Present(), Loading: loading}
	if s.Present() {
		user := s.Identity
		out.User = &user
		if !s.ExpiresAt.IsZero() {
			out.ExpiresAt = s.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return out
}

// DeleteRequest confirms a delete. The confirmation is explicit: a missing
// or false Confirm declines without calling the API.
type DeleteRequest struct {
	Confirm bool `json:"confirm" form:"confirm"`
}

// MarkerResponse carries a one-shot print marker
type MarkerResponse struct {
	Marker   string `json:"marker"`
	PrintURL string `json:"print_url"`
}

// NewMarkerResponse builds the print URL for a marker
func NewMarkerResponse(prefix, screen, id, marker string) MarkerResponse {
	return MarkerResponse{
		Marker:   marker,
		PrintURL: prefix + "/" + screen + "/" + id + "/print?marker=" + marker,
	}
}

// BoolParam reads a query flag the way the print screen does: "1" or "true"
func BoolParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
