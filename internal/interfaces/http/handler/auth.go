package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/console/internal/application/session"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/logger"
	"github.com/erp/console/internal/interfaces/http/dto"
	"github.com/erp/console/internal/interfaces/http/middleware"
)

// Sessions issues, resolves and ends per-client sessions
type Sessions interface {
	middleware.SessionResolver
	Login(ctx context.Context, creds identity.Credentials) (string, identity.Session, error)
	Logout(ctx context.Context, id string) error
}

var _ Sessions = (*session.Manager)(nil)

// AuthHandler serves login, logout and the session lookup
type AuthHandler struct {
	BaseHandler
	sessions    Sessions
	loginPath   string
	landingPath string
}

// NewAuthHandler creates an auth handler. After login the client is sent
// to landingPath; after logout to loginPath.
func NewAuthHandler(sessions Sessions, loginPath, landingPath string) *AuthHandler {
	return &AuthHandler{sessions: sessions, loginPath: loginPath, landingPath: landingPath}
}

func setSessionCookie(c *gin.Context, id string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, id, maxAge, "/", "", c.Request.TLS != nil, true)
}

// Login exchanges credentials for a new client session. A rejected login
// leaves any session the client already holds untouched and shows the
// server's message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Email and password are required")
		return
	}

	sid, s, err := h.sessions.Login(c.Request.Context(), req.Credentials())
	if err != nil {
		if errors.Is(err, session.ErrLoginFailed) {
			var domainErr *shared.DomainError
			errors.As(err, &domainErr)
			c.JSON(http.StatusUnauthorized, dto.Response{
				Error: &dto.ErrorInfo{Code: dto.ErrCodeLoginFailed, Message: domainErr.Message},
				Toast: view.Error(domainErr.Message),
			})
			return
		}
		logger.GetGinLogger(c).Error("login could not be persisted", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeSessionStorage, "The session could not be saved")
		return
	}

	setSessionCookie(c, sid, 0)
	data := dto.NewSessionResponse(s, false)
	data.SessionID = sid
	c.JSON(http.StatusOK, dto.Response{
		Success:  true,
		Data:     data,
		Toast:    view.Success("Welcome back, " + s.Identity.Name),
		Redirect: h.landingPath,
	})
}

// Logout ends the client's session and drops the cookie. The cookie is
// dropped even when the stored session could not be removed; that failure
// is still reported.
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.sessions.Logout(c.Request.Context(), middleware.SessionID(c))
	setSessionCookie(c, "", -1)
	if err != nil {
		logger.GetGinLogger(c).Error("logout could not clear storage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Response{
			Error:    &dto.ErrorInfo{Code: dto.ErrCodeSessionStorage, Message: "Signed out, but the saved session could not be removed"},
			Redirect: h.loginPath,
		})
		return
	}
	c.JSON(http.StatusOK, dto.Response{Success: true, Redirect: h.loginPath})
}

// Session reports the session the client presents
func (h *AuthHandler) Session(c *gin.Context) {
	s, err := h.sessions.Resolve(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		logger.GetGinLogger(c).Error("session lookup failed", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeSessionStorage, "The session could not be read")
		return
	}
	h.Success(c, dto.NewSessionResponse(s, false))
}
