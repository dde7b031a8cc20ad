package service

import (
	"context"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// RecentLimit is how many transactions the overview lists.
const RecentLimit = 10

// Overview is the home screen: the three collections plus their totals.
type Overview struct {
	Categories   []domain.Category
	Transactions []domain.Transaction
	Accounts     []domain.Account

	AccountsBalance decimal.Decimal
	Income          decimal.Decimal
	Expense         decimal.Decimal // magnitude of all negative amounts
	Balance         decimal.Decimal // AccountsBalance + Income - Expense
}

// Recent returns at most RecentLimit transactions in server order.
func (o *Overview) Recent() []domain.Transaction {
	if len(o.Transactions) <= RecentLimit {
		return o.Transactions
	}
	return o.Transactions[:RecentLimit]
}

// CategoryName resolves a category id against the loaded categories.
func (o *Overview) CategoryName(id int) string {
	for _, c := range o.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// Report bundles the backend's aggregate endpoints.
type Report struct {
	Summary    *domain.DashboardSummary
	ByCategory []domain.CategoryTotal
	Period     *domain.PeriodTotal
}

type DashboardService struct {
	api    port.FinanceAPI
	logger *zap.Logger
}

func NewDashboardService(api port.FinanceAPI, logger *zap.Logger) *DashboardService {
	return &DashboardService{api: api, logger: logger}
}

// Load fetches categories, transactions and accounts concurrently. The first
// failure is returned and no partial overview is produced. Sibling requests
// are not cancelled, so a successful transaction fetch still fills the cache.
func (s *DashboardService) Load(ctx context.Context, useCache bool) (*Overview, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Load")
	defer span.End()

	var ov Overview
	var g errgroup.Group
	g.Go(func() error {
		var err error
		ov.Categories, err = s.api.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		ov.Transactions, err = s.api.ListTransactions(ctx, useCache)
		return err
	})
	g.Go(func() error {
		var err error
		ov.Accounts, err = s.api.ListAccounts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard: load failed", zap.Error(err))
		return nil, err
	}

	ov.AccountsBalance, ov.Income, ov.Expense = Totals(ov.Accounts, ov.Transactions)
	ov.Balance = ov.AccountsBalance.Add(ov.Income).Sub(ov.Expense)

	span.SetAttributes(
		attribute.Int("dashboard.transactions", len(ov.Transactions)),
		attribute.Int("dashboard.accounts", len(ov.Accounts)),
	)
	return &ov, nil
}

// Totals sums account balances, positive amounts (income) and the magnitude
// of negative amounts (expense).
func Totals(accounts []domain.Account, txs []domain.Transaction) (accountsBalance, income, expense decimal.Decimal) {
	for _, a := range accounts {
		accountsBalance = accountsBalance.Add(decimal.NewFromFloat(a.Balance))
	}
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		if amount.IsPositive() {
			income = income.Add(amount)
		} else {
			expense = expense.Add(amount.Abs())
		}
	}
	return accountsBalance, income, expense
}

// Report fetches the server-side aggregates concurrently. Zero start or end
// leaves that bound open.
func (s *DashboardService) Report(ctx context.Context, start, end time.Time) (*Report, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Report")
	defer span.End()

	var r Report
	var g errgroup.Group
	g.Go(func() error {
		var err error
		r.Summary, err = s.api.Dashboard(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		r.ByCategory, err = s.api.TotalsByCategory(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		r.Period, err = s.api.TotalsByPeriod(ctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &r, nil
}
