package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/console/internal/application/guard"
	"github.com/erp/console/internal/application/session"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/infrastructure/logger"
	"github.com/erp/console/internal/interfaces/http/dto"
)

const sessionKey = "console_session"

// SessionCookie carries the session id issued at login
const SessionCookie = "console_session"

// SessionResolver resolves the session stored under a session id.
// session.Manager satisfies it.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (identity.Session, error)
}

// SessionID returns the session id a request presents: the session cookie,
// or else an "Authorization: Bearer <id>" header
func SessionID(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	if v, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// RolesFunc resolves the roles a request requires; nil admits any session
type RolesFunc func(c *gin.Context) []identity.Role

// Roles requires a fixed role set
func Roles(roles ...identity.Role) RolesFunc {
	return func(*gin.Context) []identity.Role { return roles }
}

// GuardConfig configures Guard
type GuardConfig struct {
	Sessions    SessionResolver
	Roles       RolesFunc
	LoginPath   string
	LandingPath string
}

// Guard resolves the session the request presents and admits the request
// only when it holds one of the required roles. Without a session it
// answers 401 with a redirect to the login screen; with the wrong role,
// 403 with a redirect to the landing screen and a warning toast.
func Guard(cfg GuardConfig) gin.HandlerFunc {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/dashboard"
	}

	return func(c *gin.Context) {
		s, err := cfg.Sessions.Resolve(c.Request.Context(), SessionID(c))
		if err != nil {
			logger.GetGinLogger(c).Error("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeSessionStorage, "The session could not be read", GetRequestID(c)))
			return
		}
		var required []identity.Role
		if cfg.Roles != nil {
			required = cfg.Roles(c)
		}

		d := guard.Decide(s, required)
		switch d.Outcome {
		case guard.RedirectLogin:
			resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Please sign in", GetRequestID(c))
			resp.Redirect = cfg.LoginPath
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
			return
		case guard.RedirectLanding:
			resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, d.Warning, GetRequestID(c))
			resp.Redirect = cfg.LandingPath
			resp.Toast = view.Warning(d.Warning)
			c.AbortWithStatusJSON(http.StatusForbidden, resp)
			return
		}

		c.Set(sessionKey, s)
		ctx := session.NewContext(c.Request.Context(), s)
		c.Request = c.Request.WithContext(logger.WithUser(ctx, s.Identity.Name, string(s.Identity.Role)))
		c.Next()
	}
}

// GetSession returns the session admitted by Guard
func GetSession(c *gin.Context) (identity.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return identity.Session{}, false
	}
	s, ok := v.(identity.Session)
	return s, ok
}
