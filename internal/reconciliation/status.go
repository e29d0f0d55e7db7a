package reconciliation

import (
	"fmt"

	"lease-reconciliation-service/internal/models"
)

// PaymentTransitions lists the status changes a payment may make. Overdue and
// partial payments are terminal; there is no top-up flow.
var PaymentTransitions = map[string][]string{
	models.PaymentPending: {models.PaymentPaid, models.PaymentOverdue, models.PaymentPartial},
	models.PaymentPaid:    {},
	models.PaymentOverdue: {},
	models.PaymentPartial: {},
}

// ValidateTransition checks whether a payment may move from current to target.
func ValidateTransition(current, target string) error {
	allowed, ok := PaymentTransitions[current]
	if !ok {
		return fmt.Errorf("unknown current state: %s", current)
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return fmt.Errorf("transition from %q to %q is not allowed", current, target)
}
