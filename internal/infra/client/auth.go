package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

// Login exchanges username and password for a token. It does not store the
// token; callers pass it to SetCredential.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.call(ctx, request{
		op:     "Login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   creds,
		public: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new user.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var user domain.User
	err := c.call(ctx, request{
		op:     "Register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   reg,
		public: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset starts the password reset flow for an email address.
func (c *Client) RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (*domain.Message, error) {
	var msg domain.Message
	err := c.call(ctx, request{
		op:     "RequestPasswordReset",
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   req,
		public: true,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ChangePassword changes the logged-in user's password.
func (c *Client) ChangePassword(ctx context.Context, change domain.PasswordChange) (*domain.Message, error) {
	var msg domain.Message
	err := c.call(ctx, request{
		op:     "ChangePassword",
		method: http.MethodPost,
		path:   "/auth/change-password",
		body:   change,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
