package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

const dateLayout = "2006-01-02"

// Dashboard fetches the server-side summary counters.
func (c *Client) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	var summary domain.DashboardSummary
	if err := c.call(ctx, request{op: "Dashboard", method: http.MethodGet, path: "/dashboard"}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// TotalsByCategory fetches income/expense totals grouped by category.
func (c *Client) TotalsByCategory(ctx context.Context) ([]domain.CategoryTotal, error) {
	var totals []domain.CategoryTotal
	if err := c.call(ctx, request{op: "TotalsByCategory", method: http.MethodGet, path: "/transactions/totals/by-category"}, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// TotalsByPeriod fetches totals between start and end, inclusive.
// A zero time leaves that bound to the server.
func (c *Client) TotalsByPeriod(ctx context.Context, start, end time.Time) (*domain.PeriodTotal, error) {
	params := url.Values{}
	if !start.IsZero() {
		params.Set("start", start.Format(dateLayout))
	}
	if !end.IsZero() {
		params.Set("end", end.Format(dateLayout))
	}

	path := "/transactions/totals/by-period"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var total domain.PeriodTotal
	if err := c.call(ctx, request{op: "TotalsByPeriod", method: http.MethodGet, path: path}, &total); err != nil {
		return nil, err
	}
	return &total, nil
}

// Health fetches the API root status.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	var status domain.HealthStatus
	if err := c.call(ctx, request{op: "Health", method: http.MethodGet, path: "/"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
