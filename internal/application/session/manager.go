package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/console/internal/domain/identity"
	"github.com/erp/console/internal/infrastructure/apiclient"
	"github.com/erp/console/internal/infrastructure/storage"
)

// Manager issues and resolves per-client sessions. Identity and token are
// stored under the session id, so every console instance sharing the
// store resolves the same client and nothing is cached in memory.
type Manager struct {
	store  storage.Store
	auth   Authenticator
	logger *zap.Logger
}

// NewManager creates a manager over store
func NewManager(store storage.Store, auth Authenticator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, auth: auth, logger: logger.Named("sessions")}
}

func sessionKeys(id string) (user, token string) {
	return "session:" + id + ":" + storage.KeyUser, "session:" + id + ":" + storage.KeyToken
}

// Login authenticates against the API and stores a new session. It returns
// the session id the client must present from now on. A rejected login
// stores nothing and carries the server message, or LoginFailedMessage.
func (m *Manager) Login(ctx context.Context, creds identity.Credentials) (string, identity.Session, error) {
	id, token, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.logger.Info("login rejected", zap.String("email", creds.Email), zap.Error(err))
		return "", identity.Session{}, loginError(err)
	}

	raw, err := json.Marshal(id)
	if err != nil {
		return "", identity.Session{}, fmt.Errorf("failed to encode identity: %w", err)
	}
	sid := uuid.NewString()
	userKey, tokenKey := sessionKeys(sid)
	if err := m.store.SetAll(ctx, map[string]string{userKey: string(raw), tokenKey: token}); err != nil {
		m.logger.Error("failed to persist session", zap.Error(err))
		return "", identity.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}

	m.logger.Info("logged in", zap.String("user", id.Name), zap.String("role", id.Role.String()))
	return sid, identity.NewSession(id, token, TokenExpiry(token)), nil
}

// Resolve returns the session stored under sid. An empty, malformed or
// unknown id is the empty session, not an error.
func (m *Manager) Resolve(ctx context.Context, sid string) (identity.Session, error) {
	parsed, err := uuid.Parse(sid)
	if err != nil {
		return identity.Session{}, nil
	}
	userKey, tokenKey := sessionKeys(parsed.String())
	entries, err := m.store.GetAll(ctx, userKey, tokenKey)
	if err != nil {
		return identity.Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	s, _ := decodeSession(entries[userKey], entries[tokenKey])
	return s, nil
}

// Logout forgets the session stored under sid
func (m *Manager) Logout(ctx context.Context, sid string) error {
	parsed, err := uuid.Parse(sid)
	if err != nil {
		return nil
	}
	userKey, tokenKey := sessionKeys(parsed.String())
	if err := m.store.Delete(ctx, userKey, tokenKey); err != nil {
		m.logger.Error("failed to clear session", zap.Error(err))
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

type contextKey struct{}

// NewContext returns ctx carrying s
func NewContext(ctx context.Context, s identity.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, or the empty session
func FromContext(ctx context.Context) identity.Session {
	s, _ := ctx.Value(contextKey{}).(identity.Session)
	return s
}

// ContextTokens sends the token of the session carried by the request
// context. The HTTP server wires it into the API client.
var ContextTokens apiclient.TokenSource = apiclient.TokenFunc(func(ctx context.Context) string {
	return FromContext(ctx).Token
})
