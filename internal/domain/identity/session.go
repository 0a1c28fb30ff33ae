package identity

import "time"

// Identity is the authenticated user as reported by the API
type Identity struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// Credentials are submitted on login
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an immutable snapshot of the current authentication state.
// The zero value is the empty session.
type Session struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	present   bool
}

// NewSession builds a populated session
func NewSession(id Identity, token string, expiresAt time.Time) Session {
	return Session{
		Identity:  id,
		Token:     token,
		ExpiresAt: expiresAt,
		present:   true,
	}
}

// Present reports whether the session is populated
func (s Session) Present() bool {
	return s.present
}

// HasRole reports whether the session's role is exactly one of roles
func (s Session) HasRole(roles ...Role) bool {
	if !s.present {
		return false
	}
	for _, r := range roles {
		if s.Identity.Role == r {
			return true
		}
	}
	return false
}
