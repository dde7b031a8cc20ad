package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.call(ctx, request{op: "ListCategories", method: http.MethodGet, path: "/categories/", needBody: true}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	var category domain.Category
	if err := c.call(ctx, request{op: "GetCategory", method: http.MethodGet, path: fmt.Sprintf("/categories/%d", id)}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	var category domain.Category
	if err := c.call(ctx, request{op: "CreateCategory", method: http.MethodPost, path: "/categories/", body: in}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int, in domain.CategoryInput) (*domain.Category, error) {
	var category domain.Category
	if err := c.call(ctx, request{op: "UpdateCategory", method: http.MethodPut, path: fmt.Sprintf("/categories/%d", id), body: in}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.remove(ctx, "DeleteCategory", fmt.Sprintf("/categories/%d", id), "category")
}

// CategorySuggestions returns category names to offer while typing.
func (c *Client) CategorySuggestions(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, request{op: "CategorySuggestions", method: http.MethodGet, path: "/categories/suggestions"}, &names); err != nil {
		return nil, err
	}
	return names, nil
}
