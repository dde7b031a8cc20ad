package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/boddenberg/fintrack-go/internal/domain"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransactionForm is the raw input of the new/edit transaction screen.
type TransactionForm struct {
	Amount      string
	Description string
	Date        string
	CategoryID  int
	AccountID   *int
	Type        string
}

// Build validates the form and applies the sign convention: the typed amount
// is taken as a magnitude, positive for income and negative for expense.
func (f TransactionForm) Build() (domain.TransactionInput, error) {
	description := strings.TrimSpace(f.Description)
	rawAmount := strings.TrimSpace(f.Amount)
	date := strings.TrimSpace(f.Date)

	switch {
	case rawAmount == "":
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "amount", Message: "required"}
	case description == "":
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "description", Message: "required"}
	case f.CategoryID <= 0:
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "category_id", Message: "required"}
	case date == "":
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "date", Message: "required"}
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "amount", Message: "must be a valid number"}
	}
	if amount.IsZero() {
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "amount", Message: "must not be zero"}
	}

	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	txType := strings.ToLower(strings.TrimSpace(f.Type))
	if txType == "" {
		txType = domain.TransactionIncome
	}
	amount = amount.Abs()
	switch txType {
	case domain.TransactionIncome:
	case domain.TransactionExpense:
		amount = amount.Neg()
	default:
		return domain.TransactionInput{}, &domain.ErrValidation{Field: "transaction_type", Message: "must be income or expense"}
	}

	return domain.TransactionInput{
		Amount:          amount.InexactFloat64(),
		Date:            date,
		Description:     description,
		CategoryID:      f.CategoryID,
		AccountID:       f.AccountID,
		TransactionType: txType,
	}, nil
}

// FormFromTransaction pre-fills the edit screen. The amount is shown as a
// magnitude and the type is derived from its sign when missing.
func FormFromTransaction(tx domain.Transaction) TransactionForm {
	txType := tx.TransactionType
	if txType == "" {
		txType = domain.TransactionIncome
		if tx.Amount < 0 {
			txType = domain.TransactionExpense
		}
	}
	return TransactionForm{
		Amount:      decimal.NewFromFloat(tx.Amount).Abs().String(),
		Description: tx.Description,
		Date:        tx.Date,
		CategoryID:  tx.CategoryID,
		AccountID:   tx.AccountID,
		Type:        txType,
	}
}

var (
	plainAmount   = regexp.MustCompile(`^-?\d+([.,]\d+)?$`)
	groupedAmount = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+,\d+$`)
)

// ParseAmount accepts "1234.56", "1234,56" and the pt-BR grouped "1.234,56".
// Anything else, such as the en-US "1,234.56", is rejected rather than guessed.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch {
	case plainAmount.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	case groupedAmount.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		return decimal.Decimal{}, &domain.ErrValidation{Field: "amount", Message: "must be a valid number"}
	}
	return decimal.NewFromString(s)
}
