package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

// --- Mocks ---

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
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

type mockSessionClient struct {
	credential  string
	cacheClears int

	loginResp *domain.LoginResponse
	loginErr  error
	lastLogin domain.Credentials

	registered  *domain.Registration
	registerErr error

	passwordChange *domain.PasswordChange
	resetEmail     string

	profileResp *domain.User
	profileErr  error

	remoteUser *domain.User
	getUserErr error
	lastUserID int
}

func (m *mockSessionClient) SetCredential(token string) { m.credential = token }
func (m *mockSessionClient) Credential() string         { return m.credential }
func (m *mockSessionClient) ClearCache()                { m.cacheClears++ }

func (m *mockSessionClient) Login(_ context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	m.lastLogin = creds
	return m.loginResp, m.loginErr
}

func (m *mockSessionClient) Register(_ context.Context, reg domain.Registration) (*domain.User, error) {
	m.registered = &reg
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &domain.User{ID: 7, Username: reg.Username, Email: reg.Email, FullName: reg.FullName}, nil
}

func (m *mockSessionClient) RequestPasswordReset(_ context.Context, req domain.PasswordResetRequest) (*domain.Message, error) {
	m.resetEmail = req.Email
	return &domain.Message{Message: "sent"}, nil
}

func (m *mockSessionClient) ChangePassword(_ context.Context, change domain.PasswordChange) (*domain.Message, error) {
	m.passwordChange = &change
	return &domain.Message{Message: "ok"}, nil
}

func (m *mockSessionClient) UpdateProfile(_ context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if m.profileResp != nil {
		return m.profileResp, nil
	}
	return &domain.User{ID: 1, Username: "ana", Email: update.Email, FullName: update.FullName}, nil
}

func (m *mockSessionClient) GetUser(_ context.Context, id int) (*domain.User, error) {
	m.lastUserID = id
	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	return m.remoteUser, nil
}

type mockFinanceAPI struct {
	accounts     []domain.Account
	categories   []domain.Category
	transactions []domain.Transaction
	accountsErr  error
	txErr        error
	usedCache    bool

	summary    *domain.DashboardSummary
	byCategory []domain.CategoryTotal
	period     *domain.PeriodTotal
	periodErr  error
	start, end time.Time

	mu sync.Mutex
}

func (m *mockFinanceAPI) ListAccounts(_ context.Context) ([]domain.Account, error) {
	return m.accounts, m.accountsErr
}

func (m *mockFinanceAPI) ListCategories(_ context.Context) ([]domain.Category, error) {
	return m.categories, nil
}

func (m *mockFinanceAPI) ListTransactions(_ context.Context, useCache bool) ([]domain.Transaction, error) {
	m.mu.Lock()
	m.usedCache = useCache
	m.mu.Unlock()
	return m.transactions, m.txErr
}

func (m *mockFinanceAPI) Dashboard(_ context.Context) (*domain.DashboardSummary, error) {
	return m.summary, nil
}

func (m *mockFinanceAPI) TotalsByCategory(_ context.Context) ([]domain.CategoryTotal, error) {
	return m.byCategory, nil
}

func (m *mockFinanceAPI) TotalsByPeriod(_ context.Context, start, end time.Time) (*domain.PeriodTotal, error) {
	m.mu.Lock()
	m.start, m.end = start, end
	m.mu.Unlock()
	return m.period, m.periodErr
}
