package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/fintrack-go/internal/cli"
	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/infra/cache"
	"github.com/boddenberg/fintrack-go/internal/infra/client"
	"github.com/boddenberg/fintrack-go/internal/infra/observability"
	"github.com/boddenberg/fintrack-go/internal/infra/resilience"
	"github.com/boddenberg/fintrack-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type harness struct {
	app    *cli.App
	router chi.Router
	store  *memStore
	api    *client.Client
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, retry resilience.Config) *harness {
	t.Helper()
	h := &harness{router: chi.NewRouter(), store: &memStore{data: map[string]string{}}}
	srv := httptest.NewServer(h.router)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	h.api = client.New(srv.Client(), srv.URL, cache.NewCollection[[]domain.Transaction](cache.DefaultTTL, nil), metrics, logger)
	h.app = cli.New(cli.Deps{
		API:       h.api,
		Session:   service.NewSessionService(h.api, h.store, logger),
		Dashboard: service.NewDashboardService(h.api, logger),
		Metrics:   metrics,
		Retry:     retry,
		Logger:    logger,
	})
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	return h.app.Run(context.Background(), args, strings.NewReader(stdin), &h.stdout, &h.stderr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_PromptsAndPersists(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	var got domain.Credentials
	h.router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, domain.LoginResponse{
			Token: "tok-1",
			User:  domain.User{ID: 1, Username: "ana", FullName: "Ana Lima"},
		})
	})

	require.NoError(t, h.run(t, "ana\nsecret\n", "login"))
	assert.Equal(t, domain.Credentials{Username: "ana", Password: "secret"}, got)
	assert.Contains(t, h.stdout.String(), "Logged in as Ana Lima")
	assert.Equal(t, "tok-1", h.store.data[service.KeyToken])
	assert.Equal(t, "tok-1", h.api.Credential())
}

func TestLogin_ShowsBackendDetail(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	h.router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})

	err := h.run(t, "", "login", "-u", "ana", "-p", "wrong")
	assert.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, h.stderr.String(), "error: Invalid credentials")
	assert.Contains(t, h.stderr.String(), "fintrack login")
	assert.Empty(t, h.store.data)
}

func TestTxAdd_ExpenseIsSentNegative(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	h.api.SetCredential("tok")
	var got domain.TransactionInput
	h.router.Post("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, domain.Transaction{ID: 9, Amount: got.Amount, Description: got.Description})
	})

	require.NoError(t, h.run(t, "", "tx", "add", "-amount", "1.234,50", "-desc", "Aluguel", "-date", "2025-03-01", "-category", "2", "-type", "expense"))
	assert.Equal(t, -1234.5, got.Amount)
	assert.Equal(t, domain.TransactionExpense, got.TransactionType)
	assert.Contains(t, h.stdout.String(), "-1.234,50 Aluguel")
}

func TestTxAdd_ValidationSkipsNetwork(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	var calls atomic.Int32
	h.router.Post("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusCreated, domain.Transaction{})
	})

	err := h.run(t, "", "tx", "add", "-amount", "10", "-date", "2025-03-01", "-category", "2")
	assert.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, h.stderr.String(), "error: description: required")
	assert.Zero(t, calls.Load())
}

func TestTxList_UsesCacheUntilMutation(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	var lists atomic.Int32
	h.router.Get("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		lists.Add(1)
		writeJSON(w, http.StatusOK, []domain.Transaction{
			{ID: 1, Amount: 2500, Date: "2025-03-05", Description: "Salário", Category: &domain.Category{ID: 1, Name: "Renda"}},
		})
	})
	h.router.Delete("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, h.run(t, "", "tx", "list"))
	assert.Contains(t, h.stdout.String(), "05/03/2025")
	assert.Contains(t, h.stdout.String(), "2.500,00")
	require.NoError(t, h.run(t, "", "tx"))
	assert.Equal(t, int32(1), lists.Load())

	require.NoError(t, h.run(t, "", "tx", "rm", "1"))
	require.NoError(t, h.run(t, "", "tx", "list"))
	assert.Equal(t, int32(2), lists.Load())

	require.NoError(t, h.run(t, "", "tx", "list", "-fresh"))
	assert.Equal(t, int32(3), lists.Load())
}

func TestDelete_FailureShowsGenericDetail(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	h.router.Delete("/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"detail": "Category in use"})
	})

	err := h.run(t, "", "categories", "rm", "3")
	assert.ErrorIs(t, err, cli.ErrFailed)
	assert.Contains(t, h.stderr.String(), "error: Failed to delete category")
}

func TestDashboard_Totals(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	h.router.Get("/categories/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Category{{ID: 2, Name: "Mercado"}})
	})
	h.router.Get("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Account{{ID: 1, Balance: 1000}})
	})
	h.router.Get("/transactions/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Transaction{
			{ID: 1, Amount: 500, Date: "2025-03-01", Description: "Freela"},
			{ID: 2, Amount: -200, Date: "2025-03-02", Description: "Feira", CategoryID: 2},
		})
	})

	require.NoError(t, h.run(t, "", "dashboard"))
	out := h.stdout.String()
	assert.Contains(t, out, "1.300,00")
	assert.Contains(t, out, "Mercado")
	assert.Contains(t, out, "Feira")
}

func TestRetry_ReadsRecoverFromServerErrors(t *testing.T) {
	h := newHarness(t, resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond})
	var calls atomic.Int32
	h.router.Get("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []domain.Account{{ID: 1, Name: "Nubank", Balance: 10}})
	})

	require.NoError(t, h.run(t, "", "accounts"))
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, h.stdout.String(), "Nubank")
}

func TestRetry_ClientErrorsAreFinal(t *testing.T) {
	h := newHarness(t, resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond})
	var calls atomic.Int32
	h.router.Get("/accounts/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	})

	assert.ErrorIs(t, h.run(t, "", "accounts", "list"), cli.ErrFailed)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, h.stderr.String(), "Not authenticated")
}

func TestStatsFlag(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	h.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.HealthStatus{Message: "Finance API", Status: "online"})
	})

	require.NoError(t, h.run(t, "", "-stats", "health"))
	out := h.stdout.String()
	assert.Contains(t, out, "online: Finance API")
	assert.Contains(t, out, "requests: 1")
}

func TestWhoami_RequiresSession(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	assert.ErrorIs(t, h.run(t, "", "whoami"), cli.ErrFailed)
	assert.Contains(t, h.stderr.String(), "not logged in")
}

func loginAs(t *testing.T, h *harness, user domain.User) {
	t.Helper()
	h.router.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.LoginResponse{Token: "opaque-token", User: user})
	})
	require.NoError(t, h.run(t, user.Username+"\nsecret\n", "login"))
}

func TestWhoami_RefreshesProfile(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	loginAs(t, h, domain.User{ID: 7, Username: "ana", FullName: "Ana"})
	var auth string
	h.router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "7", chi.URLParam(r, "id"))
		writeJSON(w, http.StatusOK, domain.User{ID: 7, Username: "ana", FullName: "Ana Lima", Email: "ana@lima.com"})
	})

	require.NoError(t, h.run(t, "", "whoami"))
	assert.Equal(t, "Bearer opaque-token", auth)
	out := h.stdout.String()
	assert.Contains(t, out, "Ana Lima (id 7)")
	assert.Contains(t, out, "email: ana@lima.com")
	assert.Contains(t, h.store.data[service.KeyUser], "ana@lima.com")
}

func TestWhoami_FallsBackToStoredProfile(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	loginAs(t, h, domain.User{ID: 7, Username: "ana", FullName: "Ana"})
	h.router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Database unavailable"})
	})

	require.NoError(t, h.run(t, "", "whoami"))
	assert.Contains(t, h.stdout.String(), "Ana (id 7)")
	assert.Contains(t, h.stderr.String(), "could not refresh profile")
	assert.Contains(t, h.stderr.String(), "Database unavailable")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, resilience.Config{})
	assert.ErrorIs(t, h.run(t, "", "bogus"), cli.ErrFailed)
	assert.Contains(t, h.stderr.String(), `unknown command "bogus"`)
}
