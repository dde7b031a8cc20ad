package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/format"
	"github.com/boddenberg/fintrack-go/internal/service"
)

func subcommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "list", args
	}
	return args[0], args[1:]
}

func unknownSub(st *streams, group, sub string) error {
	fmt.Fprintf(st.stderr, "unknown %s subcommand %q (list, add, edit, rm, suggest)\n", group, sub)
	return flag.ErrHelp
}

// ============================================================
// Accounts
// ============================================================

func (a *App) accounts(ctx context.Context, st *streams, args []string) error {
	sub, args := subcommand(args)
	switch sub {
	case "list":
		var accounts []domain.Account
		if err := a.read(ctx, func() (err error) {
			accounts, err = a.deps.API.ListAccounts(ctx)
			return err
		}); err != nil {
			return err
		}
		tw := table(st.stdout)
		fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE")
		for _, acc := range accounts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.AccountType, format.Currency(acc.Balance))
		}
		return tw.Flush()

	case "add", "edit":
		var id int
		if sub == "edit" {
			var err error
			if id, args, err = parseID(args, "account"); err != nil {
				return err
			}
		}
		fs := newFlags("accounts "+sub, st)
		name := fs.String("name", "", "account name")
		balance := fs.String("balance", "0", "balance")
		kind := fs.String("type", "", "account type")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" {
			return &domain.ErrValidation{Field: "name", Message: "required"}
		}
		amount, err := service.ParseAmount(*balance)
		if err != nil {
			return &domain.ErrValidation{Field: "balance", Message: "must be a valid number"}
		}
		in := domain.AccountInput{Name: strings.TrimSpace(*name), Balance: amount.InexactFloat64(), AccountType: *kind}

		var acc *domain.Account
		if sub == "add" {
			acc, err = a.deps.API.CreateAccount(ctx, in)
		} else {
			acc, err = a.deps.API.UpdateAccount(ctx, id, in)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(st.stdout, "Account %d saved: %s (%s)\n", acc.ID, acc.Name, format.Currency(acc.Balance))
		return nil

	case "rm":
		id, _, err := parseID(args, "account")
		if err != nil {
			return err
		}
		if err := a.deps.API.DeleteAccount(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(st.stdout, "Account %d deleted\n", id)
		return nil

	case "suggest":
		return a.printSuggestions(ctx, st, a.deps.API.AccountSuggestions)
	}
	return unknownSub(st, "accounts", sub)
}

// ============================================================
// Categories
// ============================================================

func (a *App) categories(ctx context.Context, st *streams, args []string) error {
	sub, args := subcommand(args)
	switch sub {
	case "list":
		var categories []domain.Category
		if err := a.read(ctx, func() (err error) {
			categories, err = a.deps.API.ListCategories(ctx)
			return err
		}); err != nil {
			return err
		}
		tw := table(st.stdout)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, c := range categories {
			fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
		}
		return tw.Flush()

	case "add", "edit":
		var id int
		if sub == "edit" {
			var err error
			if id, args, err = parseID(args, "category"); err != nil {
				return err
			}
		}
		fs := newFlags("categories "+sub, st)
		name := fs.String("name", "", "category name")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" {
			return &domain.ErrValidation{Field: "name", Message: "required"}
		}
		in := domain.CategoryInput{Name: strings.TrimSpace(*name)}

		var (
			c   *domain.Category
			err error
		)
		if sub == "add" {
			c, err = a.deps.API.CreateCategory(ctx, in)
		} else {
			c, err = a.deps.API.UpdateCategory(ctx, id, in)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(st.stdout, "Category %d saved: %s\n", c.ID, c.Name)
		return nil

	case "rm":
		id, _, err := parseID(args, "category")
		if err != nil {
			return err
		}
		if err := a.deps.API.DeleteCategory(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(st.stdout, "Category %d deleted\n", id)
		return nil

	case "suggest":
		return a.printSuggestions(ctx, st, a.deps.API.CategorySuggestions)
	}
	return unknownSub(st, "categories", sub)
}

// ============================================================
// Transactions
// ============================================================

func (a *App) transactions(ctx context.Context, st *streams, args []string) error {
	sub, args := subcommand(args)
	switch sub {
	case "list":
		fs := newFlags("tx list", st)
		fresh := fs.Bool("fresh", false, "bypass the cached list")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var txs []domain.Transaction
		if err := a.read(ctx, func() (err error) {
			txs, err = a.deps.API.ListTransactions(ctx, !*fresh)
			return err
		}); err != nil {
			return err
		}
		printTransactions(st, txs)
		return nil

	case "add", "edit":
		return a.saveTransaction(ctx, st, sub, args)

	case "rm":
		id, _, err := parseID(args, "transaction")
		if err != nil {
			return err
		}
		if err := a.deps.API.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(st.stdout, "Transaction %d deleted\n", id)
		return nil

	case "suggest":
		fs := newFlags("tx suggest", st)
		var q domain.DescriptionQuery
		fs.StringVar(&q.TransactionType, "type", "", "income or expense")
		fs.IntVar(&q.CategoryID, "category", 0, "category id")
		fs.IntVar(&q.Limit, "limit", 0, "max suggestions")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return a.printSuggestions(ctx, st, func(ctx context.Context) ([]string, error) {
			return a.deps.API.DescriptionSuggestions(ctx, q)
		})
	}
	return unknownSub(st, "tx", sub)
}

func (a *App) saveTransaction(ctx context.Context, st *streams, sub string, args []string) error {
	var (
		id   int
		form service.TransactionForm
	)
	if sub == "edit" {
		var err error
		if id, args, err = parseID(args, "transaction"); err != nil {
			return err
		}
		current, err := a.deps.API.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		form = service.FormFromTransaction(*current)
	}

	fs := newFlags("tx "+sub, st)
	fs.StringVar(&form.Amount, "amount", form.Amount, "amount (sign comes from -type)")
	fs.StringVar(&form.Description, "desc", form.Description, "description")
	fs.StringVar(&form.Date, "date", form.Date, "date YYYY-MM-DD")
	fs.IntVar(&form.CategoryID, "category", form.CategoryID, "category id")
	fs.StringVar(&form.Type, "type", nonEmpty(form.Type, domain.TransactionIncome), "income or expense")
	account := fs.Int("account", 0, "account id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account > 0 {
		form.AccountID = account
	}

	in, err := form.Build()
	if err != nil {
		return err
	}

	var tx *domain.Transaction
	if sub == "add" {
		tx, err = a.deps.API.CreateTransaction(ctx, in)
	} else {
		tx, err = a.deps.API.UpdateTransaction(ctx, id, in)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(st.stdout, "Transaction %d saved: %s %s\n", tx.ID, format.Currency(tx.Amount), tx.Description)
	return nil
}

func printTransactions(st *streams, txs []domain.Transaction) {
	tw := table(st.stdout)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
	for _, tx := range txs {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", tx.ID, format.Date(tx.Date), tx.Description, category, format.Currency(tx.Amount))
	}
	tw.Flush()
}

func (a *App) printSuggestions(ctx context.Context, st *streams, fetch func(context.Context) ([]string, error)) error {
	var items []string
	if err := a.read(ctx, func() (err error) {
		items, err = fetch(ctx)
		return err
	}); err != nil {
		return err
	}
	for _, s := range items {
		fmt.Fprintln(st.stdout, s)
	}
	return nil
}
