package mapping

import (
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/SscSPs/ecb_rates_pipeline/internal/models"
)

// ToDomainOrder converts an orders row into a domain Order.
func ToDomainOrder(m models.Order) domain.Order {
	order := domain.Order{
		OrderID:      m.OrderID,
		Amount:       m.Amount,
		Discount:     m.Discount,
		CurrencyCode: domain.NormalizeCurrencyCode(m.CurrencyCode),
	}
	if m.ConvertedAmountEUR.Valid {
		converted := m.ConvertedAmountEUR.Decimal
		order.ConvertedAmountEUR = &converted
	}
	return order
}
