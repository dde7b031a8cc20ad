package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

// ListAccounts fetches all accounts of the logged-in user.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := c.call(ctx, request{op: "ListAccounts", method: http.MethodGet, path: "/accounts/", needBody: true}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount fetches one account.
func (c *Client) GetAccount(ctx context.Context, id int) (*domain.Account, error) {
	var account domain.Account
	if err := c.call(ctx, request{op: "GetAccount", method: http.MethodGet, path: fmt.Sprintf("/accounts/%d", id)}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount creates an account.
func (c *Client) CreateAccount(ctx context.Context, in domain.AccountInput) (*domain.Account, error) {
	var account domain.Account
	if err := c.call(ctx, request{op: "CreateAccount", method: http.MethodPost, path: "/accounts/", body: in}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount replaces an account's fields.
func (c *Client) UpdateAccount(ctx context.Context, id int, in domain.AccountInput) (*domain.Account, error) {
	var account domain.Account
	if err := c.call(ctx, request{op: "UpdateAccount", method: http.MethodPut, path: fmt.Sprintf("/accounts/%d", id), body: in}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account.
func (c *Client) DeleteAccount(ctx context.Context, id int) error {
	return c.remove(ctx, "DeleteAccount", fmt.Sprintf("/accounts/%d", id), "account")
}

// AccountSuggestions returns account names to offer while typing.
func (c *Client) AccountSuggestions(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, request{op: "AccountSuggestions", method: http.MethodGet, path: "/accounts/suggestions"}, &names); err != nil {
		return nil, err
	}
	return names, nil
}
