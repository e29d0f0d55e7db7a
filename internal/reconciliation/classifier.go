// Package reconciliation matches rent payments against a contract's expected
// monthly rent and aggregates payment collections for summary views.
package reconciliation

import (
	"github.com/shopspring/decimal"

	"lease-reconciliation-service/internal/models"
)

// Classification is the preview shown before a payment is submitted.
// Remaining is negative when the payment exceeds the rent.
type Classification struct {
	IsFull    bool            `json:"is_full"`
	IsPartial bool            `json:"is_partial"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ClassifyPayment compares a payment amount with the contract rent. A zero
// payment is neither full nor partial.
func ClassifyPayment(rent, amount decimal.Decimal) Classification {
	return Classification{
		IsFull:    rent.IsPositive() && amount.GreaterThanOrEqual(rent),
		IsPartial: amount.IsPositive() && amount.LessThan(rent),
		Remaining: rent.Sub(amount),
	}
}

// StatusFor is the status assigned to a payment when it is recorded.
func StatusFor(c Classification) string {
	switch {
	case c.IsFull:
		return models.PaymentPaid
	case c.IsPartial:
		return models.PaymentPartial
	default:
		return models.PaymentPending
	}
}
