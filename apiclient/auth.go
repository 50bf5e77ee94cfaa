package apiclient

import (
	"context"
	"net/http"

	herdgate "github.com/herdtrack/herdgate"
)

const (
	defaultTokenEndpoint    = "/auth/token"
	defaultProfileEndpoint  = "/auth/me"
	defaultRegisterEndpoint = "/auth/register"
	changePasswordEndpoint  = "/auth/change-password"
)

// ExchangeCredentials performs the credential exchange and returns the
// access token. The token is NOT persisted here; the session engine decides
// whether and when to save it.
func (c *Client) ExchangeCredentials(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.Request(ctx, http.MethodPost, c.tokenEndpoint, body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// CurrentUser fetches the profile behind the stored bearer token.
func (c *Client) CurrentUser(ctx context.Context) (*herdgate.UserProfile, error) {
	var profile herdgate.UserProfile
	if err := c.Request(ctx, http.MethodGet, c.profileEndpoint, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Register creates a new account. It does not log in; the session engine
// chains the login step itself.
func (c *Client) Register(ctx context.Context, req herdgate.RegisterRequest) error {
	return c.Request(ctx, http.MethodPost, c.registerEndpoint, req, nil)
}

// UpdateCurrentUser persists profile changes server-side and returns the
// updated record. The in-memory session patch (Engine.UpdateUser) is applied
// separately by the caller, optimistically.
func (c *Client) UpdateCurrentUser(ctx context.Context, fields map[string]any) (*herdgate.UserProfile, error) {
	var profile herdgate.UserProfile
	if err := c.Request(ctx, http.MethodPut, c.profileEndpoint, fields, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{OldPassword: oldPassword, NewPassword: newPassword}

	return c.Request(ctx, http.MethodPost, changePasswordEndpoint, body, nil)
}
