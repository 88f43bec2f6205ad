package forumsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Login authenticates with username and password and persists the
// returned session. A 401 here is a credentials failure and is returned
// as an *APIError matching ErrUnauthorized.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(WithoutRenewal(ctx), http.MethodPost, "/login", nil,
		credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Access() == "" {
		return nil, errors.New("login response carried no token")
	}

	sess := Session{
		AccessToken:  resp.Access(),
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
		Username:     resp.Username,
	}
	if err := c.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &resp, nil
}

// Register creates an account. The backend returns no tokens, so only the
// identity is stored; a Login is still needed.
func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResponse, error) {
	var resp RegisterResponse
	err := c.do(WithoutRenewal(ctx), http.MethodPost, "/register", nil,
		credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, Session{UserID: resp.UserID, Username: resp.Username}); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &resp, nil
}

// Logout forgets the local session. The backend keeps no server-side
// session to end.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// ChangePassword requires the current password.
func (c *Client) ChangePassword(ctx context.Context, oldPass, newPass string) error {
	return c.do(ctx, http.MethodPut, "/change_pass", nil,
		changePassRequest{OldPass: oldPass, NewPass: newPass}, nil)
}
