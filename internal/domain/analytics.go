package domain

// DashboardSummary is returned by GET /dashboard.
type DashboardSummary struct {
	TotalAccounts     int     `json:"total_accounts"`
	TotalCategories   int     `json:"total_categories"`
	TotalTransactions int     `json:"total_transactions"`
	TotalBalance      float64 `json:"total_balance"`
	TotalIncome       float64 `json:"total_income"`
	TotalExpense      float64 `json:"total_expense"`
	NetBalance        float64 `json:"net_balance"`
}

// CategoryTotal is one row of GET /transactions/totals/by-category.
type CategoryTotal struct {
	CategoryID       int     `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	TotalIncome      float64 `json:"total_income"`
	TotalExpense     float64 `json:"total_expense"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transaction_count"`
}

// PeriodTotal is returned by GET /transactions/totals/by-period.
type PeriodTotal struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpense     float64 `json:"total_expense"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transaction_count"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
}
