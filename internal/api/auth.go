package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/avertin/pricepulse/internal/model"
)

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// registerRequest is the registration payload.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Register creates a new user account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, email, password, phone string) (model.UserProfile, error) {
	var profile model.UserProfile
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", registerRequest{
		Email:    email,
		Password: password,
		Phone:    phone,
	}, &profile)
	return profile, err
}

// Login exchanges credentials for a bearer token.
//
// The gateway's login endpoint is an OAuth2 password grant: the request is
// form-encoded (not JSON) and the email travels in the "username" field.
// This is an external contract and must not be changed.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok Token
	err := c.doForm(ctx, "/auth/login", form, &tok)
	return tok, err
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (model.UserProfile, error) {
	var profile model.UserProfile
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &profile)
	return profile, err
}
