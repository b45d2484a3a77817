package models

import "github.com/shopspring/decimal"

// Order is the projection of an orders row read by the converter.
type Order struct {
	OrderID            string
	Amount             decimal.Decimal
	Discount           decimal.Decimal
	CurrencyCode       string
	ConvertedAmountEUR decimal.NullDecimal
}
