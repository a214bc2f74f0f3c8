package service

import "github.com/shopspring/decimal"

// CurrencySymbol trails every user-visible amount.
const CurrencySymbol = "₽"

// FormatMoney renders an amount with two decimal places and the currency
// symbol. Rounding happens only here, never while accumulating.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + CurrencySymbol
}

func formatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
