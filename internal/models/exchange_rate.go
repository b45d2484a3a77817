package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a row of the rate table.
type ExchangeRate struct {
	CurrencyCode string          `json:"currencyCode"` // Primary Key, VARCHAR(3)
	Rate         decimal.Decimal `json:"rate"`         // DECIMAL(10,4)
	UpdatedAt    time.Time       `json:"updatedAt"`    // TIMESTAMP, stored as UTC
}
