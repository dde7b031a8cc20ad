// Package client is the HTTP client for the finance tracker REST API.
//
// Every method performs at most one round trip and returns either the decoded
// payload or a *domain.APIError. The transaction list is served from a
// single-entry snapshot cache for up to its TTL; any transaction mutation
// invalidates it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/infra/cache"
	"github.com/boddenberg/fintrack-go/internal/infra/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const (
	detailUnreachable     = "Unable to reach the server"
	detailInvalidResponse = "Invalid response from server"
	detailInvalidRequest  = "Invalid request payload"
)

// Client calls the finance tracker API on behalf of one session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	txCache    *cache.Collection[[]domain.Transaction]
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
	// gen counts transaction snapshot invalidations. A list fetch only
	// stores its result if no invalidation happened while it was in flight.
	gen uint64
}

// New creates a Client. txCache holds the transaction list snapshot and is
// owned by the client from here on.
func New(httpClient *http.Client, baseURL string, txCache *cache.Collection[[]domain.Transaction], metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		txCache:    txCache,
		metrics:    metrics,
		logger:     logger,
	}
}

// SetCredential sets the bearer token sent with authenticated requests.
// An empty token removes it. Switching to a different token drops the
// transaction snapshot, and a list fetch still in flight for the previous
// token will not repopulate it.
func (c *Client) SetCredential(token string) {
	c.mu.Lock()
	changed := token != c.token
	c.token = token
	if changed {
		c.clearTransactionsLocked()
	}
	c.mu.Unlock()

	if changed {
		c.metrics.IncrCacheClear(transactionsCache)
	}
}

// Credential returns the current bearer token, or "".
func (c *Client) Credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ClearCache drops the transaction snapshot.
func (c *Client) ClearCache() {
	c.invalidateTransactions()
}

// Do performs an authenticated call against an arbitrary path. body is
// marshalled as-is; a 2xx body is decoded into out (use *json.RawMessage to
// keep it untouched, or nil to discard it).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.call(ctx, request{op: "Do", method: method, path: path, body: body}, out)
}

// request describes one API call.
type request struct {
	op     string
	method string
	path   string
	body   any
	public bool // never send the Authorization header
	// needBody rejects an empty 2xx body instead of leaving out untouched.
	needBody bool
}

// response is a fully read HTTP response.
type response struct {
	status     int
	statusLine string
	body       []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// call executes r and decodes a 2xx body into out. Non-2xx bodies are
// normalized from their {"detail": ...} payload.
func (c *Client) call(ctx context.Context, r request, out any) error {
	ctx, span := tracer.Start(ctx, "Client."+r.op)
	defer span.End()

	resp, err := c.execute(ctx, r)
	if err == nil {
		if !resp.ok() {
			err = normalizeError(resp)
		} else if out != nil && r.needBody && len(bytes.TrimSpace(resp.body)) == 0 {
			c.metrics.IncrAPIError("decode")
			err = &domain.APIError{Detail: detailInvalidResponse}
		} else if out != nil && len(bytes.TrimSpace(resp.body)) > 0 {
			if decodeErr := json.Unmarshal(resp.body, out); decodeErr != nil {
				c.metrics.IncrAPIError("decode")
				err = &domain.APIError{Detail: detailInvalidResponse, Err: decodeErr}
			}
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// remove executes a delete whose outcome is success or failure only.
// The response body is never decoded.
func (c *Client) remove(ctx context.Context, op, path, resource string) error {
	ctx, span := tracer.Start(ctx, "Client."+op)
	defer span.End()

	resp, err := c.execute(ctx, request{op: op, method: http.MethodDelete, path: path})
	if err == nil && !resp.ok() {
		err = &domain.APIError{Detail: fmt.Sprintf("Failed to delete %s", resource)}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// execute performs the round trip and reads the whole body.
// The returned error is always a transport-class *domain.APIError.
func (c *Client) execute(ctx context.Context, r request) (*response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.path", r.path),
		attribute.String("request.id", requestID),
	)

	call := observability.APICall{
		Operation: r.op,
		Method:    r.method,
		Path:      r.path,
		RequestID: requestID,
	}
	defer func() {
		call.Latency = time.Since(start)
		c.metrics.RecordRequestDuration(r.op, call.Latency)
		observability.LogAPICall(c.logger, call)
	}()

	req, err := c.newRequest(ctx, r, requestID)
	if err != nil {
		call.Err = err
		return nil, err
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncrRequest("none")
		c.metrics.IncrAPIError("transport")
		call.Err = err
		return nil, &domain.APIError{Detail: detailUnreachable, Err: err}
	}
	defer httpResp.Body.Close()

	call.Status = httpResp.StatusCode
	c.metrics.IncrRequest(strconv.Itoa(httpResp.StatusCode))
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.IncrAPIError("transport")
		call.Err = err
		return nil, &domain.APIError{Detail: detailUnreachable, Err: err}
	}

	resp := &response{
		status:     httpResp.StatusCode,
		statusLine: httpResp.Status,
		body:       body,
	}
	if !resp.ok() {
		c.metrics.IncrAPIError(fmt.Sprintf("%dxx", resp.status/100))
	}
	return resp, nil
}

// newRequest builds the HTTP request with JSON and auth headers.
func (c *Client) newRequest(ctx context.Context, r request, requestID string) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, &domain.APIError{Detail: detailInvalidRequest, Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, &domain.APIError{Detail: detailInvalidRequest, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if !r.public {
		if token := c.Credential(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func (c *Client) invalidateTransactions() {
	c.mu.Lock()
	c.clearTransactionsLocked()
	c.mu.Unlock()
	c.metrics.IncrCacheClear(transactionsCache)
}

// clearTransactionsLocked requires c.mu held for writing.
func (c *Client) clearTransactionsLocked() {
	c.gen++
	c.txCache.Clear()
}

// snapshotGeneration is read before a list fetch starts.
func (c *Client) snapshotGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// storeTransactions replaces the snapshot unless it was invalidated since gen
// was read. It reports whether the list was stored.
func (c *Client) storeTransactions(gen uint64, transactions []domain.Transaction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.txCache.Set(transactions)
	return true
}
