// Package session holds the authenticated identity shared by every screen.
//
// Holder is the single session of one console user, as the CLI has it.
// Every mutation is written to the backing storage.Store before the
// in-memory snapshot changes, so the two never diverge.
//
// Manager keeps one session per client of the HTTP server, keyed by an
// opaque session id the client presents on every request.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/domain/shared"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/storage"
)

// LoginFailedMessage is shown when the API rejects a login without saying why
const LoginFailedMessage = "Login failed"

// ErrLoginFailed is the code carried by login errors
var ErrLoginFailed = shared.NewDomainError("LOGIN_FAILED", LoginFailedMessage)

// Authenticator exchanges credentials for an identity and bearer token
type Authenticator interface {
	Login(ctx context.Context, creds identity.Credentials) (identity.Identity, string, error)
}

// Holder is the session/identity holder
type Holder struct {
	store  storage.Store
	auth   Authenticator
	logger *zap.Logger

	// writeMu serializes Restore, Login and Logout
	writeMu sync.Mutex

	mu      sync.RWMutex
	current identity.Session
	loading bool
}

// NewHolder creates a holder in the loading state; call Restore once at
// startup
func NewHolder(store storage.Store, auth Authenticator, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{
		store:   store,
		auth:    auth,
		logger:  logger.Named("session"),
		loading: true,
	}
}

// Restore rehydrates the session from storage without any network call.
// Afterwards the snapshot is either fully populated or empty: a stray
// identity without a token (or the reverse) is cleared from storage.
func (h *Holder) Restore(ctx context.Context) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	defer h.setLoading(false)

	entries, err := h.store.GetAll(ctx, storage.KeyUser, storage.KeyToken)
	if err != nil {
		h.set(identity.Session{})
		return fmt.Errorf("failed to read persisted session: %w", err)
	}
	if len(entries) == 0 {
		h.set(identity.Session{})
		return nil
	}

	if s, ok := decodeSession(entries[storage.KeyUser], entries[storage.KeyToken]); ok {
		h.set(s)
		h.logger.Debug("session restored", zap.String("user", s.Identity.Name))
		return nil
	}

	_, hasUser := entries[storage.KeyUser]
	_, hasToken := entries[storage.KeyToken]
	h.logger.Warn("discarding partial persisted session",
		zap.Bool("has_user", hasUser), zap.Bool("has_token", hasToken))
	h.set(identity.Session{})
	if err := h.store.Delete(ctx, storage.KeyUser, storage.KeyToken); err != nil {
		return fmt.Errorf("failed to clear partial session: %w", err)
	}
	return nil
}

// Login authenticates against the API. On success identity and token are
// persisted first and then become the in-memory session. On failure the
// session is unchanged and the returned error carries the server message,
// or LoginFailedMessage. Calling Login again after a failure is safe.
func (h *Holder) Login(ctx context.Context, creds identity.Credentials) (identity.Identity, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	id, token, err := h.auth.Login(ctx, creds)
	if err != nil {
		h.logger.Info("login rejected", zap.String("email", creds.Email), zap.Error(err))
		return identity.Identity{}, loginError(err)
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := h.store.SetAll(ctx, map[string]string{
		storage.KeyUser:  string(raw),
		storage.KeyToken: token,
	}); err != nil {
		h.logger.Error("failed to persist session", zap.Error(err))
		return identity.Identity{}, fmt.Errorf("failed to persist session: %w", err)
	}

	h.set(identity.NewSession(id, token, TokenExpiry(token)))
	h.logger.Info("logged in", zap.String("user", id.Name), zap.String("role", id.Role.String()))
	return id, nil
}

// Logout clears storage and memory. Memory is cleared even when the
// storage delete fails so the process never stays signed in; the storage
// error is still returned.
func (h *Holder) Logout(ctx context.Context) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	err := h.store.Delete(ctx, storage.KeyUser, storage.KeyToken)
	h.set(identity.Session{})
	if err != nil {
		h.logger.Error("failed to clear persisted session", zap.Error(err))
		return fmt.Errorf("failed to clear session: %w", err)
	}
	h.logger.Info("logged out")
	return nil
}

// Snapshot returns the current session
func (h *Holder) Snapshot() identity.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Token returns the bearer token, or "" without a session. It makes the
// holder an apiclient.TokenSource.
func (h *Holder) Token(context.Context) string {
	return h.Snapshot().Token
}

// Loading reports whether Restore has not finished yet
func (h *Holder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

func (h *Holder) set(s identity.Session) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}

func (h *Holder) setLoading(v bool) {
	h.mu.Lock()
	h.loading = v
	h.mu.Unlock()
}

// decodeSession pairs a persisted identity with its token. Anything short
// of both, or an identity that no longer decodes, is no session.
func decodeSession(user, token string) (identity.Session, bool) {
	if user == "" || strings.TrimSpace(token) == "" {
		return identity.Session{}, false
	}
	var id identity.Identity
	if err := json.Unmarshal([]byte(user), &id); err != nil {
		return identity.Session{}, false
	}
	return identity.NewSession(id, token, TokenExpiry(token)), true
}

func loginError(err error) error {
	return shared.NewDomainError(ErrLoginFailed.Code, apiclient.MessageOr(err, LoginFailedMessage))
}

// TokenExpiry returns the exp claim of a JWT without verifying it, or the
// zero time for opaque tokens
func TokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

var _ apiclient.TokenSource = (*Holder)(nil)
