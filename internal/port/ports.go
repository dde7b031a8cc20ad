// Package port defines the interfaces (ports) between the callers and their
// dependencies. Services depend on these, not on the concrete HTTP client or
// storage driver.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

// CredentialHolder owns the bearer token used for authenticated calls.
type CredentialHolder interface {
	SetCredential(token string)
	Credential() string
	ClearCache()
}

// AuthAPI covers the authentication and user profile endpoints.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (*domain.Message, error)
	ChangePassword(ctx context.Context, change domain.PasswordChange) (*domain.Message, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
	GetUser(ctx context.Context, id int) (*domain.User, error)
}

// AccountsAPI covers /accounts.
type AccountsAPI interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id int) (*domain.Account, error)
	CreateAccount(ctx context.Context, in domain.AccountInput) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id int, in domain.AccountInput) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id int) error
	AccountSuggestions(ctx context.Context) ([]string, error)
}

// CategoriesAPI covers /categories.
type CategoriesAPI interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int) (*domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int) error
	CategorySuggestions(ctx context.Context) ([]string, error)
}

// TransactionsAPI covers /transactions.
type TransactionsAPI interface {
	ListTransactions(ctx context.Context, useCache bool) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, id int) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id int, in domain.TransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id int) error
	DescriptionSuggestions(ctx context.Context, q domain.DescriptionQuery) ([]string, error)
}

// ReportsAPI covers the aggregation endpoints.
type ReportsAPI interface {
	Dashboard(ctx context.Context) (*domain.DashboardSummary, error)
	TotalsByCategory(ctx context.Context) ([]domain.CategoryTotal, error)
	TotalsByPeriod(ctx context.Context, start, end time.Time) (*domain.PeriodTotal, error)
}

// KeyValueStore is the durable client-side storage for session state.
// Get returns ok=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionClient is what the session lifecycle needs from the API client.
type SessionClient interface {
	AuthAPI
	CredentialHolder
}

// FinanceAPI is the read side used to build the dashboard and reports.
type FinanceAPI interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTransactions(ctx context.Context, useCache bool) ([]domain.Transaction, error)
	ReportsAPI
}
