package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

const (
	transactionsCache    = "transactions"
	transactionListLimit = 50
)

// ListTransactions returns the transaction list. With useCache set, a valid
// snapshot is returned as-is without a network call; otherwise the list is
// fetched and becomes the new snapshot, unless the snapshot was invalidated
// (mutation or credential switch) while the fetch was in flight. A failed
// fetch leaves the snapshot alone.
func (c *Client) ListTransactions(ctx context.Context, useCache bool) ([]domain.Transaction, error) {
	if useCache {
		if cached, ok := c.txCache.Get(); ok {
			c.metrics.IncrCacheHit(transactionsCache)
			return cached, nil
		}
	}
	c.metrics.IncrCacheMiss(transactionsCache)
	gen := c.snapshotGeneration()

	var transactions []domain.Transaction
	err := c.call(ctx, request{
		op:       "ListTransactions",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/transactions/?limit=%d", transactionListLimit),
		needBody: true,
	}, &transactions)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	if !c.storeTransactions(gen, transactions) {
		c.logger.Debug("transaction list fetched across an invalidation, not cached")
	}
	return transactions, nil
}

// GetTransaction fetches one transaction. It never touches the snapshot.
func (c *Client) GetTransaction(ctx context.Context, id int) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.call(ctx, request{op: "GetTransaction", method: http.MethodGet, path: fmt.Sprintf("/transactions/%d", id)}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction creates a transaction. The snapshot is dropped once the
// call completes, whether it succeeded or not.
func (c *Client) CreateTransaction(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error) {
	defer c.invalidateTransactions()

	var tx domain.Transaction
	if err := c.call(ctx, request{op: "CreateTransaction", method: http.MethodPost, path: "/transactions/", body: in}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction replaces a transaction. The snapshot is dropped once the
// call completes, whether it succeeded or not.
func (c *Client) UpdateTransaction(ctx context.Context, id int, in domain.TransactionInput) (*domain.Transaction, error) {
	defer c.invalidateTransactions()

	var tx domain.Transaction
	if err := c.call(ctx, request{op: "UpdateTransaction", method: http.MethodPut, path: fmt.Sprintf("/transactions/%d", id), body: in}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteTransaction removes a transaction. Only a successful delete drops the
// snapshot.
func (c *Client) DeleteTransaction(ctx context.Context, id int) error {
	if err := c.remove(ctx, "DeleteTransaction", fmt.Sprintf("/transactions/%d", id), "transaction"); err != nil {
		return err
	}
	c.invalidateTransactions()
	return nil
}

// DescriptionSuggestions returns past descriptions matching the filter.
func (c *Client) DescriptionSuggestions(ctx context.Context, q domain.DescriptionQuery) ([]string, error) {
	params := url.Values{}
	if q.TransactionType != "" {
		params.Set("transaction_type", q.TransactionType)
	}
	if q.CategoryID != 0 {
		params.Set("category_id", strconv.Itoa(q.CategoryID))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/transactions/suggestions/descriptions"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var descriptions []string
	if err := c.call(ctx, request{op: "DescriptionSuggestions", method: http.MethodGet, path: path}, &descriptions); err != nil {
		return nil, err
	}
	return descriptions, nil
}
