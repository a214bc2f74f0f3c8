package domain

import "github.com/shopspring/decimal"

// CategoryTotal is one entry of the expense ranking: a category name and
// the summed amount spent in it.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// BudgetReport is the engine's output for one user-month. It is computed on
// demand and never persisted. Diff and projection fields are only meaningful
// when the corresponding Has* flag is set.
type BudgetReport struct {
	Month        Month           `json:"month"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`

	HasBudget      bool            `json:"hasBudget"`
	PlannedIncome  decimal.Decimal `json:"plannedIncome"`
	PlannedExpense decimal.Decimal `json:"plannedExpense"`
	IncomeDiff     decimal.Decimal `json:"incomeDiff"`
	ExpenseDiff    decimal.Decimal `json:"expenseDiff"`

	HasProjection    bool            `json:"hasProjection"`
	ProjectedExpense decimal.Decimal `json:"projectedExpense"`

	TopCategories   []CategoryTotal `json:"topCategories"`
	Recommendations []string        `json:"recommendations"`
}
