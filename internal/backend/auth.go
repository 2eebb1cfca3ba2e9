package backend

import (
	"context"
	"fmt"

	"shopfloor-console/internal/shared_kernel/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login trades credentials for a bearer token and installs it in the
// session. A token the session manager cannot decode leaves the console
// unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var reply loginResponse
	if err := c.post(ctx, _loginPath, LoginRequest{Email: email, Password: password}, &reply); err != nil {
		return err
	}

	if err := c.sessions.SetToken(ctx, reply.AccessToken); err != nil {
		return fmt.Errorf("installing issued token: %w", err)
	}

	return nil
}

func (c *Client) WhoAmI(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/api/whoami", nil, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}
