// Package expense computes construction expense line amounts.
package expense

import "github.com/shopspring/decimal"

// LineAmount is quantity × unit price rounded to cents. Negative inputs give
// zero.
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return decimal.Zero
	}
	return quantity.Mul(unitPrice).Round(2)
}
