package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Contract is a lease binding one tenant to one property for an inclusive
// date range. Dates are ISO YYYY-MM-DD strings.
type Contract struct {
	ID             int64           `db:"id" json:"id"`
	ContractNumber string          `db:"contract_number" json:"contract_number"`
	TenantID       int64           `db:"tenant_id" json:"tenant_id"`
	PropertyID     int64           `db:"property_id" json:"property_id"`
	RentAmount     decimal.Decimal `db:"rent_amount" json:"rent_amount"`
	StartDate      string          `db:"start_date" json:"start_date"`
	EndDate        string          `db:"end_date" json:"end_date"`
	Terms          string          `db:"terms" json:"terms"`
	Status         string          `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"-"`
	UpdatedAt      time.Time       `db:"updated_at" json:"-"`
}

// Property status is advisory; occupancy is derived from contracts.
type Property struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Status      string          `db:"status" json:"status"`
	MonthlyRent decimal.Decimal `db:"monthly_rent" json:"monthly_rent"`
	Address     string          `db:"address" json:"address"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
	UpdatedAt   time.Time       `db:"updated_at" json:"-"`
}

type Tenant struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email"`
	PropertyIDs []int64   `db:"-" json:"property_ids"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

type RentPayment struct {
	ID            int64           `db:"id" json:"id"`
	TenantID      int64           `db:"tenant_id" json:"tenant_id"`
	ContractID    int64           `db:"contract_id" json:"contract_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate   string          `db:"payment_date" json:"payment_date"`
	BankAccountID int64           `db:"bank_account_id" json:"bank_account_id"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
	UpdatedAt     time.Time       `db:"updated_at" json:"-"`
}

// ProjectExpense is a construction project cost line.
type ProjectExpense struct {
	ID          int64           `db:"id" json:"id"`
	ProjectID   int64           `db:"project_id" json:"project_id"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	ExpenseDate string          `db:"expense_date" json:"expense_date"`
	VendorID    *int64          `db:"vendor_id" json:"vendor_id,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
}

// AuditEntry records a write made through the services.
type AuditEntry struct {
	ID            int64           `db:"id" json:"id"`
	EntityType    string          `db:"entity_type" json:"entity_type"`
	EntityID      int64           `db:"entity_id" json:"entity_id"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	UserID        string          `db:"user_id" json:"user_id"`
	CorrelationID string          `db:"correlation_id" json:"correlation_id"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
}

// Contract status constants
const (
	ContractActive     = "active"
	ContractExpired    = "expired"
	ContractTerminated = "terminated"
)

// Property status constants
const (
	PropertyAvailable = "available"
	PropertyOccupied  = "occupied"
)

// Payment status constants
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentOverdue = "overdue"
	PaymentPartial = "partial"
)

// Audit entity types
const (
	EntityContract = "contract"
	EntityPayment  = "rent_payment"
	EntityExpense  = "project_expense"
)

// AuditAction constants
const (
	AuditActionCreated    = "created"
	AuditActionUpdated    = "updated"
	AuditActionTransition = "status_changed"
)

func ValidContractStatus(s string) bool {
	switch s {
	case ContractActive, ContractExpired, ContractTerminated:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentOverdue, PaymentPartial:
		return true
	}
	return false
}
