package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

func (c *Client) GetUser(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	if err := c.call(ctx, request{op: "GetUser", method: http.MethodGet, path: fmt.Sprintf("/users/%d", id)}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.call(ctx, request{op: "UpdateProfile", method: http.MethodPut, path: "/users/profile", body: update}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
