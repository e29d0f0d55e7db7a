package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"lease-reconciliation-service/internal/models"
)

const periodLayout = "2006-01"

// Summary aggregates a payment collection for list and dashboard views.
// Pending includes overdue payments.
type Summary struct {
	TotalPending  decimal.Decimal `json:"total_pending"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalPartial  decimal.Decimal `json:"total_partial"`
	PendingCount  int             `json:"pending_count"`
	OverdueCount  int             `json:"overdue_count"`
	PartialCount  int             `json:"partial_count"`
	PaidCount     int             `json:"paid_count"`
}

func Summarize(payments []*models.RentPayment) Summary {
	s := Summary{
		TotalPending:  decimal.Zero,
		TotalReceived: decimal.Zero,
		TotalPartial:  decimal.Zero,
	}
	for _, p := range payments {
		amount := SafeAmount(p.Amount)
		switch p.Status {
		case models.PaymentPending:
			s.TotalPending = s.TotalPending.Add(amount)
			s.PendingCount++
		case models.PaymentOverdue:
			s.TotalPending = s.TotalPending.Add(amount)
			s.OverdueCount++
		case models.PaymentPaid:
			s.TotalReceived = s.TotalReceived.Add(amount)
			s.PaidCount++
		case models.PaymentPartial:
			s.TotalPartial = s.TotalPartial.Add(amount)
			s.PartialCount++
		}
	}
	return s
}

// SumAmounts totals raw stored values with SafeAmount.
func SumAmounts(values []any) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(SafeAmount(v))
	}
	return total
}

// Period returns the YYYY-MM billing period of an ISO date, or "" if the date
// is invalid.
func Period(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Format(periodLayout)
}

func ValidPeriod(period string) bool {
	_, err := time.Parse(periodLayout, period)
	return err == nil
}

// PeriodReconciliation is the outcome of reconciling all of a contract's
// payments in one billing period against its rent.
type PeriodReconciliation struct {
	ContractID int64           `json:"contract_id"`
	Period     string          `json:"period"`
	Expected   decimal.Decimal `json:"expected"`
	Received   decimal.Decimal `json:"received"`
	Payments   int             `json:"payments"`
	Classification
}

// ReconcilePeriod sums the paid and partial payments of contract c dated in
// period and classifies the total against the rent. Pending and overdue
// payments have not been received and are not counted.
func ReconcilePeriod(c *models.Contract, payments []*models.RentPayment, period string) PeriodReconciliation {
	received := decimal.Zero
	count := 0
	for _, p := range payments {
		if p.ContractID != c.ID || Period(p.PaymentDate) != period {
			continue
		}
		if p.Status != models.PaymentPaid && p.Status != models.PaymentPartial {
			continue
		}
		received = received.Add(SafeAmount(p.Amount))
		count++
	}
	return PeriodReconciliation{
		ContractID:     c.ID,
		Period:         period,
		Expected:       c.RentAmount,
		Received:       received,
		Payments:       count,
		Classification: ClassifyPayment(c.RentAmount, received),
	}
}
