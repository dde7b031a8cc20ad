// Package domain defines the records exchanged with the finance tracker API.
// Their shape is owned by the backend; the client passes them through and
// only the caller applies conventions such as the amount sign.
package domain

// ============================================================
// Categories
// ============================================================

// Category groups transactions (e.g. "Alimentação", "Salário").
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoryInput is the body for POST /categories/ and PUT /categories/{id}.
type CategoryInput struct {
	Name string `json:"name"`
}

// ============================================================
// Transactions
// ============================================================

// Transaction types sent alongside the signed amount.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction is a single income (positive amount) or expense (negative amount).
type Transaction struct {
	ID              int       `json:"id"`
	Amount          float64   `json:"amount"`
	Date            string    `json:"date"`
	Description     string    `json:"description,omitempty"`
	CategoryID      int       `json:"category_id,omitempty"`
	AccountID       *int      `json:"account_id,omitempty"`
	TransactionType string    `json:"transaction_type,omitempty"`
	Category        *Category `json:"category,omitempty"`
}

// TransactionInput is the body for POST /transactions/ and PUT /transactions/{id}.
type TransactionInput struct {
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	Description     string  `json:"description"`
	CategoryID      int     `json:"category_id"`
	AccountID       *int    `json:"account_id,omitempty"`
	TransactionType string  `json:"transaction_type,omitempty"`
}

// DescriptionQuery filters GET /transactions/suggestions/descriptions.
// Zero values are left out of the query string.
type DescriptionQuery struct {
	TransactionType string
	CategoryID      int
	Limit           int
}

// Message is the generic {"message": "..."} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
