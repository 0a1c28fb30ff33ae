package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/console/internal/domain/identity"
)

// ErrNoToken is returned when a login succeeds but carries no token
var ErrNoToken = errors.New("login response carried no token")

// AuthAPI is the remote login endpoint
type AuthAPI struct {
	client *Client
	path   string
}

// NewAuthAPI binds the login endpoint at path (default /auth/login)
func NewAuthAPI(c *Client, path string) *AuthAPI {
	if path == "" {
		path = "/auth/login"
	}
	return &AuthAPI{client: c, path: path}
}

// loginPayload accepts the shapes seen across API versions: the user and
// token may be wrapped in "data", and the token may be a string or a
// {"access_token": ...} object.
type loginPayload struct {
	User        *identity.Identity `json:"user"`
	Token       json.RawMessage    `json:"token"`
	AccessToken string             `json:"accessToken"`
	AccessSnake string             `json:"access_token"`
}

type tokenObject struct {
	AccessToken string `json:"access_token"`
	Camel       string `json:"accessToken"`
}

// Login exchanges credentials for an identity and bearer token
func (a *AuthAPI) Login(ctx context.Context, creds identity.Credentials) (identity.Identity, string, error) {
	resp, err := a.client.Post(ctx, a.path, creds)
	if err != nil {
		return identity.Identity{}, "", err
	}

	var wrapped struct {
		Data *loginPayload `json:"data"`
	}
	var flat loginPayload
	if err := json.Unmarshal(resp.Body, &wrapped); err != nil {
		return identity.Identity{}, "", fmt.Errorf("parsing login response: %w", err)
	}
	payload := wrapped.Data
	if payload == nil || payload.User == nil {
		if err := json.Unmarshal(resp.Body, &flat); err != nil {
			return identity.Identity{}, "", fmt.Errorf("parsing login response: %w", err)
		}
		payload = &flat
	}

	token := payload.token()
	if token == "" {
		return identity.Identity{}, "", ErrNoToken
	}
	if payload.User == nil {
		return identity.Identity{}, "", fmt.Errorf("login response carried no user")
	}
	return *payload.User, token, nil
}

func (p *loginPayload) token() string {
	if len(p.Token) > 0 {
		var s string
		if json.Unmarshal(p.Token, &s) == nil && s != "" {
			return strings.TrimSpace(s)
		}
		var obj tokenObject
		if json.Unmarshal(p.Token, &obj) == nil {
			if obj.AccessToken != "" {
				return obj.AccessToken
			}
			if obj.Camel != "" {
				return obj.Camel
			}
		}
	}
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.AccessSnake
}
