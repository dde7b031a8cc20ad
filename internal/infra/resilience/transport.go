package resilience

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var errServerStatus = errors.New("server error status")

// TransportConfig selects the protections wrapped around the base transport.
type TransportConfig struct {
	// BreakerName enables the circuit breaker when non-empty.
	BreakerName string
	// MaxConcurrency bounds in-flight round trips; 0 disables the bulkhead.
	MaxConcurrency int
	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64
	// Burst is the limiter bucket size (defaults to 1).
	Burst int
}

// Transport is an http.RoundTripper applying rate limit, bulkhead and
// circuit breaker, in that order, around a base transport.
// 5xx responses count as breaker failures but are still returned to the caller.
type Transport struct {
	base     http.RoundTripper
	cb       *gobreaker.CircuitBreaker
	bulkhead *Bulkhead
	limiter  *rate.Limiter
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, cfg TransportConfig) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{base: base}
	if cfg.BreakerName != "" {
		t.cb = NewCircuitBreaker(cfg.BreakerName)
	}
	if cfg.MaxConcurrency > 0 {
		t.bulkhead = NewBulkhead(cfg.MaxConcurrency)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	if t.bulkhead != nil {
		if err := t.bulkhead.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("bulkhead: %w", err)
		}
		defer t.bulkhead.Release()
	}

	if t.cb == nil {
		return t.base.RoundTrip(req)
	}

	result, err := t.cb.Execute(func() (any, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if errors.Is(err, errServerStatus) {
		return result.(*http.Response), nil
	}
	if err != nil {
		return nil, fmt.Errorf("circuit breaker %s: %w", t.cb.Name(), err)
	}
	return result.(*http.Response), nil
}

// State reports the breaker state, or "disabled".
func (t *Transport) State() string {
	if t.cb == nil {
		return "disabled"
	}
	return t.cb.State().String()
}
