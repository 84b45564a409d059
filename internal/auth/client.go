// Package auth talks to the auth service and stores the issued token in the
// session store.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
)

// ErrNoToken is returned when a login answer carries no access token.
var ErrNoToken = errors.New("login response has no access token")

// TokenSetter is the writable side of the session store.
type TokenSetter interface {
	SetToken(ctx context.Context, token string) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

type Client struct {
	gw      gateway.Requester
	session TokenSetter
	baseURL string
}

func NewClient(gw gateway.Requester, session TokenSetter, baseURL string) *Client {
	return &Client{gw: gw, session: session, baseURL: strings.TrimRight(baseURL, "/")}
}

// Login exchanges credentials for a token and makes it the current session.
// On any failure the session is left untouched.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	tok, err := gateway.Fetch[domain.AccessToken](ctx, c.gw, http.MethodPost, c.baseURL+"/login", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(tok.AccessToken)
	if token == "" {
		return "", ErrNoToken
	}
	if err := c.session.SetToken(ctx, token); err != nil {
		return "", err
	}
	return token, nil
}

// Signup registers an account. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (domain.User, error) {
	return gateway.Fetch[domain.User](ctx, c.gw, http.MethodPost, c.baseURL+"/signup", req)
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	return gateway.Fetch[domain.User](ctx, c.gw, http.MethodGet, c.baseURL+"/me", nil)
}
