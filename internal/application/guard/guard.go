// Package guard decides whether a screen may render for a session.
package guard

import (
	"slices"

	"github.com/erp/console/internal/domain/identity"
)

// Outcome of a guard decision
type Outcome string

const (
	// Render the requested screen
	Render Outcome = "render"
	// RedirectLogin sends an anonymous visitor to the login screen
	RedirectLogin Outcome = "redirect_login"
	// RedirectLanding sends a signed-in user without the role to the
	// landing screen with a warning
	RedirectLanding Outcome = "redirect_landing"
)

// NotPermittedMessage is the warning shown on RedirectLanding
const NotPermittedMessage = "You are not permitted to access that page"

// Decision is the result of Decide
type Decision struct {
	Outcome Outcome
	Warning string
}

// Decide gates a screen requiring one of required. An empty required set
// admits any session. Role matching is exact and case-sensitive.
func Decide(s identity.Session, required []identity.Role) Decision {
	if !s.Present() {
		return Decision{Outcome: RedirectLogin}
	}
	if len(required) == 0 || slices.Contains(required, s.Identity.Role) {
		return Decision{Outcome: Render}
	}
	return Decision{Outcome: RedirectLanding, Warning: NotPermittedMessage}
}
