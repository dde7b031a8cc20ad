package service_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/fintrack-go/internal/domain"
	"github.com/boddenberg/fintrack-go/internal/service"
)

func TestTransactionForm_SignConvention(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		txType string
		want   float64
	}{
		{"income stays positive", "150.50", "income", 150.50},
		{"expense becomes negative", "80", "expense", -80},
		{"negative income is flipped", "-20", "income", 20},
		{"negative expense stays negative", "-20", "expense", -20},
		{"grouped decimal comma", "1.234,56", "expense", -1234.56},
		{"decimal comma", "12,5", "income", 12.5},
		{"default type is income", "10", "", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := service.TransactionForm{
				Amount: tt.amount, Description: " Mercado ", Date: "2025-12-10", CategoryID: 3, Type: tt.txType,
			}.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Amount != tt.want {
				t.Errorf("expected %v, got %v", tt.want, in.Amount)
			}
			if in.Description != "Mercado" {
				t.Errorf("expected trimmed description, got %q", in.Description)
			}
			if in.CategoryID != 3 || in.Date != "2025-12-10" {
				t.Errorf("unexpected input %+v", in)
			}
		})
	}
}

func TestTransactionForm_Validation(t *testing.T) {
	valid := service.TransactionForm{Amount: "10", Description: "x", Date: "2025-01-01", CategoryID: 1, Type: "income"}

	tests := []struct {
		name  string
		edit  func(f *service.TransactionForm)
		field string
	}{
		{"missing amount", func(f *service.TransactionForm) { f.Amount = "" }, "amount"},
		{"missing description", func(f *service.TransactionForm) { f.Description = "  " }, "description"},
		{"missing category", func(f *service.TransactionForm) { f.CategoryID = 0 }, "category_id"},
		{"missing date", func(f *service.TransactionForm) { f.Date = "" }, "date"},
		{"not a number", func(f *service.TransactionForm) { f.Amount = "abc" }, "amount"},
		{"en-US grouping", func(f *service.TransactionForm) { f.Amount = "1,234.56" }, "amount"},
		{"two decimal commas", func(f *service.TransactionForm) { f.Amount = "1,2,3" }, "amount"},
		{"zero", func(f *service.TransactionForm) { f.Amount = "0,00" }, "amount"},
		{"bad date", func(f *service.TransactionForm) { f.Date = "10/12/2025" }, "date"},
		{"unknown type", func(f *service.TransactionForm) { f.Type = "transfer" }, "transaction_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.edit(&form)
			_, err := form.Build()
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestFormFromTransaction(t *testing.T) {
	form := service.FormFromTransaction(domain.Transaction{Amount: -42.5, Description: "Luz", Date: "2025-02-01", CategoryID: 2})
	if form.Amount != "42.5" || form.Type != domain.TransactionExpense {
		t.Errorf("unexpected form %+v", form)
	}

	in, err := form.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Amount != -42.5 {
		t.Errorf("expected round trip to -42.5, got %v", in.Amount)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1234.56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{"12,5", "12.5", true},
		{"1.234,56", "1234.56", true},
		{"1.234.567,8", "1234567.8", true},
		{" -20 ", "-20", true},
		{"1,234.56", "", false},
		{"12.34,5", "", false},
		{"1.234", "1.234", true},
		{"", "", false},
		{"R$ 10", "", false},
	}
	for _, tt := range tests {
		got, err := service.ParseAmount(tt.in)
		if !tt.ok {
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) || verr.Field != "amount" {
				t.Errorf("ParseAmount(%q): expected amount validation error, got %v (%v)", tt.in, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
