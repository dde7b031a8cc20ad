package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/infra/cache"
	"github.com/boddenberg/fintrack-go/internal/infra/client"
	"github.com/boddenberg/fintrack-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeClock drives cache expiry in tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// fakeAPI is a chi-routed stand-in for the finance backend that counts
// calls per route pattern and remembers the last request headers.
type fakeAPI struct {
	t      *testing.T
	router chi.Router
	server *httptest.Server

	mu      sync.Mutex
	calls   map[string]int
	headers map[string]http.Header
	bodies  map[string][]byte
	queries map[string]url.Values
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		t:       t,
		router:  chi.NewRouter(),
		calls:   make(map[string]int),
		headers: make(map[string]http.Header),
		bodies:  make(map[string][]byte),
		queries: make(map[string]url.Values),
	}
	api.server = httptest.NewServer(api.router)
	t.Cleanup(api.server.Close)
	return api
}

// handle registers a handler and records each call under "METHOD pattern".
func (a *fakeAPI) handle(method, pattern string, h http.HandlerFunc) {
	key := method + " " + pattern
	a.router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var raw json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&raw)
			body = raw
		}
		a.mu.Lock()
		a.calls[key]++
		a.headers[key] = r.Header.Clone()
		a.bodies[key] = body
		a.queries[key] = r.URL.Query()
		a.mu.Unlock()
		h(w, r)
	})
}

func (a *fakeAPI) count(method, pattern string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[method+" "+pattern]
}

func (a *fakeAPI) header(method, pattern string) http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.headers[method+" "+pattern]
}

func (a *fakeAPI) body(method, pattern string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[method+" "+pattern]
}

func (a *fakeAPI) query(method, pattern string) url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queries[method+" "+pattern]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// newTestClient builds a client against api with a fake clock.
func newTestClient(api *fakeAPI, clock *fakeClock) (*client.Client, *observability.Metrics) {
	metrics := observability.NewMetrics()
	txCache := cache.NewCollection[[]domain.Transaction](cache.DefaultTTL, clock.Now)
	c := client.New(&http.Client{Timeout: 5 * time.Second}, api.server.URL, txCache, metrics, zap.NewNop())
	return c, metrics
}
