package domain

// Account is a place money is held (bank account, wallet, card).
type Account struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	AccountType string  `json:"account_type,omitempty"`
}

// AccountInput is the body for POST /accounts/ and PUT /accounts/{id}.
type AccountInput struct {
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	AccountType string  `json:"account_type,omitempty"`
}
