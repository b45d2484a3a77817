package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Order is the part of an externally owned order row the converter reads and writes.
type Order struct {
	OrderID            string
	Amount             decimal.Decimal
	Discount           decimal.Decimal // zero when the orders table has no discount column
	CurrencyCode       string
	ConvertedAmountEUR *decimal.Decimal // nil until converted
}

// NetAmount is the amount subject to conversion.
func (o Order) NetAmount() decimal.Decimal {
	return o.Amount.Sub(o.Discount)
}

// ConversionFailure records an order that could not be converted.
type ConversionFailure struct {
	OrderID      string
	CurrencyCode string
	Err          error
}

// ConversionReport summarizes one converter pass.
type ConversionReport struct {
	Selected   int
	Converted  int
	Skipped    int // filled by another writer between selection and update
	NullAmount int // left out of selection because the amount is NULL
	Failures   []ConversionFailure
}

// Err joins the failure errors, or returns nil when every order converted.
func (r ConversionReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}
