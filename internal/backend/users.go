package backend

import (
	"context"
	"fmt"

	"shopfloor-console/internal/shared_kernel/domain"
)

type UserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserRequest) (domain.User, error) {
	var user domain.User
	if err := c.post(ctx, "/api/admin/users", in, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (c *Client) GetUser(ctx context.Context, id domain.ID) (domain.User, error) {
	var user domain.User
	if err := c.get(ctx, fmt.Sprintf("/api/admin/users/%d", id), nil, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (c *Client) PatchUser(ctx context.Context, id domain.ID, in UserRequest) (domain.User, error) {
	var user domain.User
	if err := c.patch(ctx, fmt.Sprintf("/api/admin/users/%d", id), in, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/admin/users/%d", id))
}
