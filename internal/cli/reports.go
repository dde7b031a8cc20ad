package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/format"
	"github.com/boddenberg/fintrack-go/internal/service"
)

func (a *App) dashboard(ctx context.Context, st *streams, args []string) error {
	fs := newFlags("dashboard", st)
	fresh := fs.Bool("fresh", false, "bypass the cached transaction list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var ov *service.Overview
	if err := a.read(ctx, func() (err error) {
		ov, err = a.deps.Dashboard.Load(ctx, !*fresh)
		return err
	}); err != nil {
		return err
	}

	if u := a.deps.Session.CurrentUser(); u != nil {
		fmt.Fprintf(st.stdout, "Olá, %s\n\n", displayName(u))
	}
	tw := table(st.stdout)
	fmt.Fprintf(tw, "Saldo em contas\t%s\n", format.CurrencyDecimal(ov.AccountsBalance))
	fmt.Fprintf(tw, "Receitas\t%s\n", format.CurrencyDecimal(ov.Income))
	fmt.Fprintf(tw, "Despesas\t%s\n", format.CurrencyDecimal(ov.Expense))
	fmt.Fprintf(tw, "Saldo\t%s\n", format.CurrencyDecimal(ov.Balance))
	fmt.Fprintf(tw, "Categorias\t%d\n", len(ov.Categories))
	tw.Flush()

	recent := ov.Recent()
	if len(recent) == 0 {
		fmt.Fprintln(st.stdout, "\nNenhuma transação")
		return nil
	}
	fmt.Fprintln(st.stdout, "\nÚltimas transações")
	printTransactions(st, withCategoryNames(ov, recent))
	return nil
}

// withCategoryNames fills Category from the loaded categories when the
// backend returned only the id.
func withCategoryNames(ov *service.Overview, txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		if tx.Category == nil && tx.CategoryID != 0 {
			if name := ov.CategoryName(tx.CategoryID); name != "" {
				tx.Category = &domain.Category{ID: tx.CategoryID, Name: name}
			}
		}
		out[i] = tx
	}
	return out
}

func (a *App) report(ctx context.Context, st *streams, args []string) error {
	fs := newFlags("report", st)
	startFlag := fs.String("start", "", "period start YYYY-MM-DD")
	endFlag := fs.String("end", "", "period end YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	start, err := parseDay("start", *startFlag)
	if err != nil {
		return err
	}
	end, err := parseDay("end", *endFlag)
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return &domain.ErrValidation{Field: "end", Message: "must not be before start"}
	}

	var r *service.Report
	if err := a.read(ctx, func() (err error) {
		r, err = a.deps.Dashboard.Report(ctx, start, end)
		return err
	}); err != nil {
		return err
	}

	tw := table(st.stdout)
	if s := r.Summary; s != nil {
		fmt.Fprintf(tw, "Contas\t%d\n", s.TotalAccounts)
		fmt.Fprintf(tw, "Transações\t%d\n", s.TotalTransactions)
		fmt.Fprintf(tw, "Receitas\t%s\n", format.Currency(s.TotalIncome))
		fmt.Fprintf(tw, "Despesas\t%s\n", format.Currency(s.TotalExpense))
		fmt.Fprintf(tw, "Saldo líquido\t%s\n", format.Currency(s.NetBalance))
	}
	tw.Flush()

	if len(r.ByCategory) > 0 {
		fmt.Fprintln(st.stdout, "\nPor categoria")
		tw = table(st.stdout)
		fmt.Fprintln(tw, "CATEGORIA\tRECEITAS\tDESPESAS\tSALDO\tQTD")
		for _, c := range r.ByCategory {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.CategoryName,
				format.Currency(c.TotalIncome), format.Currency(c.TotalExpense), format.Currency(c.Balance), c.TransactionCount)
		}
		tw.Flush()
	}

	if p := r.Period; p != nil {
		fmt.Fprintf(st.stdout, "\nPeríodo (%s): receitas %s, despesas %s, saldo %s, %d transações\n",
			format.Period(start, end), format.Currency(p.TotalIncome), format.Currency(p.TotalExpense),
			format.Currency(p.Balance), p.TransactionCount)
	}
	return nil
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: field, Message: "must be YYYY-MM-DD"}
	}
	return t, nil
}
